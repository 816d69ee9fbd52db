package graph

import "strings"

// Placeholder replaces attribute values missing from the dataset.
const Placeholder = "no data"

// NodeDetails is the payload of the detail panel.
type NodeDetails struct {
	ID               NodeID    `json:"id"`
	Label            string    `json:"label"`
	InDegree         int       `json:"in_degree"`
	OutDegree        int       `json:"out_degree"`
	Classification   [3]string `json:"classification"`
	Description      string    `json:"description"`
	LongDescriptions [3]string `json:"long_descriptions"`
	MissingData      bool      `json:"missing_data"`
}

// Details gathers the attributes of a node. A label absent from an
// attribute table yields placeholders and MissingData rather than an error.
func (m *Model) Details(id NodeID) (NodeDetails, bool) {
	if !m.valid(id) {
		return NodeDetails{}, false
	}
	n := m.nodes[id]

	d := NodeDetails{
		ID:        n.ID,
		Label:     n.Label,
		InDegree:  n.InDegree,
		OutDegree: n.OutDegree,
	}

	if row, ok := m.temporal.Row(n.Label); ok {
		copy(d.Classification[:], row)
	} else {
		d.Classification = [3]string{Placeholder, Placeholder, Placeholder}
		d.MissingData = true
	}

	if row, ok := m.short.Row(n.Label); ok && len(row) > 0 {
		d.Description = row[0]
	} else {
		d.Description = Placeholder
		d.MissingData = true
	}

	if row, ok := m.long.Row(n.Label); ok {
		copy(d.LongDescriptions[:], row)
	} else {
		d.LongDescriptions = [3]string{Placeholder, Placeholder, Placeholder}
		d.MissingData = true
	}

	return d, true
}

// ClassificationRank orders the temporal classification vocabulary:
// 1 for bajo, 2 for medio, 3 for alto and 0 for anything else. The panel
// renders higher ranks with heavier emphasis.
func ClassificationRank(value string) int {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "bajo":
		return 1
	case "medio":
		return 2
	case "alto":
		return 3
	default:
		return 0
	}
}
