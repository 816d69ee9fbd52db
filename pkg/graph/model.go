package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-netmap/pkg/dataset"
	"github.com/dd0wney/cluso-netmap/pkg/geom"
)

// AllLabel is the filter option meaning "no focus".
const AllLabel = "all"

var (
	ErrDuplicateLabel = errors.New("duplicate node label")
	ErrNodeNotFound   = errors.New("node not found")
	ErrEdgeNotFound   = errors.New("edge not found")
)

// Model is the node and edge collection built from a dataset. Its shape is
// fixed after Build; only visibility, color, highlight and position change.
// Model is not safe for concurrent use.
type Model struct {
	nodes   []Node
	edges   []Edge
	weights [][]int
	byLabel map[string]NodeID
	stats   DegreeStats

	temporal *dataset.AttributeTable
	short    *dataset.AttributeTable
	long     *dataset.AttributeTable
	saved    map[NodeID]geom.Point
}

// Build creates the model, computes degrees and applies enc to every node.
func Build(b *dataset.Bundle, enc Encoder) (*Model, error) {
	n := len(b.Labels)
	if len(b.Weights) != n {
		return nil, fmt.Errorf("weights have %d rows for %d labels", len(b.Weights), n)
	}

	m := &Model{
		nodes:    make([]Node, n),
		weights:  b.Weights,
		byLabel:  make(map[string]NodeID, n),
		stats:    ComputeDegrees(b.Weights),
		temporal: b.Temporal,
		short:    b.Descriptions,
		long:     b.LongDescriptions,
	}

	for i, label := range b.Labels {
		if _, dup := m.byLabel[label]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
		}
		m.byLabel[label] = NodeID(i)

		node := Node{
			ID:        NodeID(i),
			Label:     label,
			InDegree:  m.stats.In[i],
			OutDegree: m.stats.Out[i],
		}
		v := enc(node, m.stats)
		node.Size = v.Size
		node.BaseColor = v.Color
		node.Color = v.Color
		m.nodes[i] = node
	}

	for i, row := range b.Weights {
		for j, w := range row {
			if w <= 0 {
				continue
			}
			linkType := "-"
			if i < len(b.LinkTypes) && j < len(b.LinkTypes[i]) && b.LinkTypes[i][j] != "" {
				linkType = b.LinkTypes[i][j]
			}
			m.edges = append(m.edges, Edge{
				ID:       EdgeID(len(m.edges)),
				From:     NodeID(i),
				To:       NodeID(j),
				Level:    Level(w),
				LinkType: linkType,
			})
		}
	}

	if b.Positions != nil {
		m.saved = make(map[NodeID]geom.Point, len(b.Positions))
		for id, p := range b.Positions {
			m.saved[NodeID(id)] = p
		}
	}

	return m, nil
}

func (m *Model) NodeCount() int { return len(m.nodes) }
func (m *Model) EdgeCount() int { return len(m.edges) }

// Stats returns the degree statistics computed at build time.
func (m *Model) Stats() DegreeStats { return m.stats }

func (m *Model) valid(id NodeID) bool { return id >= 0 && int(id) < len(m.nodes) }

// Node returns a copy of the node.
func (m *Model) Node(id NodeID) (Node, bool) {
	if !m.valid(id) {
		return Node{}, false
	}
	return copyNode(m.nodes[id]), true
}

// Edge returns a copy of the edge.
func (m *Model) Edge(id EdgeID) (Edge, bool) {
	if id < 0 || int(id) >= len(m.edges) {
		return Edge{}, false
	}
	return m.edges[id], true
}

// Nodes returns copies of every node in id order.
func (m *Model) Nodes() []Node {
	out := make([]Node, len(m.nodes))
	for i, n := range m.nodes {
		out[i] = copyNode(n)
	}
	return out
}

// Edges returns copies of every edge in scan order.
func (m *Model) Edges() []Edge {
	return append([]Edge(nil), m.edges...)
}

func copyNode(n Node) Node {
	if n.Position != nil {
		p := *n.Position
		n.Position = &p
	}
	return n
}

// Lookup resolves a label.
func (m *Model) Lookup(label string) (NodeID, bool) {
	id, ok := m.byLabel[label]
	return id, ok
}

// Weight returns the link level from a to b, 0 when unlinked.
func (m *Model) Weight(a, b NodeID) int {
	if !m.valid(a) || !m.valid(b) {
		return 0
	}
	return m.weights[a][b]
}

// Connected reports a link between a and b in either direction.
func (m *Model) Connected(a, b NodeID) bool {
	return m.Weight(a, b) > 0 || m.Weight(b, a) > 0
}

// Labels returns every label sorted.
func (m *Model) Labels() []string {
	out := make([]string, 0, len(m.byLabel))
	for l := range m.byLabel {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// FilterOptions is AllLabel followed by the sorted labels.
func (m *Model) FilterOptions() []string {
	return append([]string{AllLabel}, m.Labels()...)
}

// VisibleNodes returns the ids of nodes that are not hidden.
func (m *Model) VisibleNodes() []NodeID {
	out := make([]NodeID, 0, len(m.nodes))
	for _, n := range m.nodes {
		if !n.Hidden {
			out = append(out, n.ID)
		}
	}
	return out
}

// AllNodes returns every node id.
func (m *Model) AllNodes() []NodeID {
	out := make([]NodeID, len(m.nodes))
	for i := range m.nodes {
		out[i] = NodeID(i)
	}
	return out
}

// IsVisible reports whether id names an existing, visible node.
func (m *Model) IsVisible(id NodeID) bool {
	return m.valid(id) && !m.nodes[id].Hidden
}

// SetNodeHidden changes node visibility.
func (m *Model) SetNodeHidden(id NodeID, hidden bool) error {
	if !m.valid(id) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	m.nodes[id].Hidden = hidden
	return nil
}

// SetEdgeHidden changes edge visibility.
func (m *Model) SetEdgeHidden(id EdgeID, hidden bool) error {
	if id < 0 || int(id) >= len(m.edges) {
		return fmt.Errorf("%w: %d", ErrEdgeNotFound, id)
	}
	m.edges[id].Hidden = hidden
	return nil
}

// SetColor sets the current color and highlight flag of a node.
func (m *Model) SetColor(id NodeID, c RGB, highlighted bool) error {
	if !m.valid(id) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	m.nodes[id].Color = c
	m.nodes[id].Highlighted = highlighted
	return nil
}

// ResetColor restores the encoder color and clears the highlight.
func (m *Model) ResetColor(id NodeID) error {
	if !m.valid(id) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	m.nodes[id].Color = m.nodes[id].BaseColor
	m.nodes[id].Highlighted = false
	return nil
}

// SetPosition places a node.
func (m *Model) SetPosition(id NodeID, p geom.Point) error {
	if !m.valid(id) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	m.nodes[id].Position = &p
	return nil
}

// SetPositions places every node present in positions. Unknown ids are
// skipped.
func (m *Model) SetPositions(positions map[NodeID]geom.Point) {
	for id, p := range positions {
		if m.valid(id) {
			p := p
			m.nodes[id].Position = &p
		}
	}
}

// Positions returns the position of every placed node.
func (m *Model) Positions() map[NodeID]geom.Point {
	out := make(map[NodeID]geom.Point, len(m.nodes))
	for _, n := range m.nodes {
		if n.Position != nil {
			out[n.ID] = *n.Position
		}
	}
	return out
}

// SavedPositions returns the loaded layout, or nil when none was loaded.
func (m *Model) SavedPositions() map[NodeID]geom.Point {
	if m.saved == nil {
		return nil
	}
	out := make(map[NodeID]geom.Point, len(m.saved))
	for id, p := range m.saved {
		out[id] = p
	}
	return out
}

// EdgeSummary is the content of an edge tooltip.
type EdgeSummary struct {
	From     string
	To       string
	Level    Level
	LinkType string
}

// EdgeSummary describes an edge by its endpoint labels.
func (m *Model) EdgeSummary(id EdgeID) (EdgeSummary, bool) {
	e, ok := m.Edge(id)
	if !ok {
		return EdgeSummary{}, false
	}
	return EdgeSummary{
		From:     m.nodes[e.From].Label,
		To:       m.nodes[e.To].Label,
		Level:    e.Level,
		LinkType: e.LinkType,
	}, true
}
