package dataset

import (
	"sort"

	"github.com/dd0wney/cluso-netmap/pkg/geom"
)

// MatrixFile is the adjacency matrix as exported by pandas (orient=split).
// Cell (i,j) is null, 0 or the link level from node i to node j.
type MatrixFile struct {
	Columns []string     `json:"columns" validate:"required,min=1,unique,dive,required"`
	Index   []string     `json:"index"`
	Data    [][]*float64 `json:"data" validate:"required"`
}

// LinkTypeFile holds the link type per cell, aligned with MatrixFile.
type LinkTypeFile struct {
	Data [][]*string `json:"data" validate:"required"`
}

// TableFile is an attribute table indexed by node label.
type TableFile struct {
	Columns []string    `json:"columns"`
	Index   []string    `json:"index" validate:"required,unique"`
	Data    [][]*string `json:"data" validate:"required"`
}

// Bundle is the normalized dataset. Weights[i][j] is 0 (no link) or 1..3.
// Positions is nil when no saved layout was available.
type Bundle struct {
	Labels           []string
	Weights          [][]int
	LinkTypes        [][]string
	Temporal         *AttributeTable
	Descriptions     *AttributeTable
	LongDescriptions *AttributeTable
	Positions        map[int]geom.Point
}

// AttributeTable maps a node label to its row. Row order in the source file
// does not have to follow the matrix column order.
type AttributeTable struct {
	Name    string
	Columns []string
	rows    map[string][]string
}

// NewAttributeTable builds a table from label-keyed rows.
func NewAttributeTable(name string, columns []string, rows map[string][]string) *AttributeTable {
	if rows == nil {
		rows = make(map[string][]string)
	}
	return &AttributeTable{Name: name, Columns: columns, rows: rows}
}

// Row returns a copy of the row for label.
func (t *AttributeTable) Row(label string) ([]string, bool) {
	if t == nil {
		return nil, false
	}
	row, ok := t.rows[label]
	if !ok {
		return nil, false
	}
	return append([]string(nil), row...), true
}

// Len returns the number of rows.
func (t *AttributeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Labels returns the row labels sorted.
func (t *AttributeTable) Labels() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.rows))
	for l := range t.rows {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
