// Package hittest finds the node or edge under the pointer and drives the
// floating edge tooltip.
package hittest

import (
	"math"

	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
)

// Scene is what the pointer is tested against. *graph.Model satisfies it.
type Scene interface {
	Nodes() []graph.Node
	Edges() []graph.Edge
}

// Kind of thing under the pointer.
type Kind int

const (
	Nothing Kind = iota
	NodeHit
	EdgeHit
)

// Hit is the result of a test.
type Hit struct {
	Kind Kind
	Node graph.NodeID
	Edge graph.EdgeID
}

var miss = Hit{Kind: Nothing, Node: graph.None, Edge: -1}

// Test checks nodes first; an edge only counts when no node is under p.
// p is in model units and tolerance widens edge strokes.
func Test(scene Scene, p geom.Point, tolerance float64) Hit {
	nodes := scene.Nodes()
	if id, ok := NodeAt(nodes, p); ok {
		return Hit{Kind: NodeHit, Node: id, Edge: -1}
	}
	if id, ok := EdgeAt(nodes, scene.Edges(), p, tolerance); ok {
		return Hit{Kind: EdgeHit, Node: graph.None, Edge: id}
	}
	return miss
}

// NodeAt returns the topmost visible node whose disc contains p. Nodes are
// drawn in id order, so later nodes are on top.
func NodeAt(nodes []graph.Node, p geom.Point) (graph.NodeID, bool) {
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.Hidden || n.Position == nil {
			continue
		}
		if p.Dist(*n.Position) <= n.Size {
			return n.ID, true
		}
	}
	return graph.None, false
}

// EdgeAt returns the visible edge closest to p whose stroke, widened by
// tolerance, contains p.
func EdgeAt(nodes []graph.Node, edges []graph.Edge, p geom.Point, tolerance float64) (graph.EdgeID, bool) {
	best := graph.EdgeID(-1)
	bestDist := math.MaxFloat64

	for _, e := range edges {
		if e.Hidden {
			continue
		}
		from, ok1 := endpoint(nodes, e.From)
		to, ok2 := endpoint(nodes, e.To)
		if !ok1 || !ok2 {
			continue
		}

		d := geom.SegmentDistance(p, from, to)
		if d <= e.Width()/2+tolerance && d < bestDist {
			best, bestDist = e.ID, d
		}
	}
	return best, best >= 0
}

func endpoint(nodes []graph.Node, id graph.NodeID) (geom.Point, bool) {
	if id < 0 || int(id) >= len(nodes) {
		return geom.Point{}, false
	}
	n := nodes[id]
	if n.Hidden || n.Position == nil {
		return geom.Point{}, false
	}
	return *n.Position, true
}
