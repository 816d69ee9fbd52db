package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-netmap/pkg/dataset"
	"github.com/dd0wney/cluso-netmap/pkg/geom"
)

var defaultColor = MustRGB("#186170")

// abcBundle is the three-node example: A->B (Low), B->C (Medium).
func abcBundle() *dataset.Bundle {
	return &dataset.Bundle{
		Labels:  []string{"A", "B", "C"},
		Weights: [][]int{{0, 1, 0}, {0, 0, 2}, {0, 0, 0}},
		LinkTypes: [][]string{
			{"", "causal", ""},
			{"", "", ""},
			{"", "", ""},
		},
		Temporal: dataset.NewAttributeTable("temporal", nil, map[string][]string{
			"A": {"bajo", "medio", "alto"},
			"B": {"alto", "alto", "alto"},
		}),
		Descriptions: dataset.NewAttributeTable("descriptions", nil, map[string][]string{
			"A": {"topic a"}, "B": {"topic b"}, "C": {"topic c"},
		}),
		LongDescriptions: dataset.NewAttributeTable("long", nil, map[string][]string{
			"A": {"a1", "a2", "a3"}, "B": {"b1", "b2", "b3"}, "C": {"c1", "c2", "c3"},
		}),
	}
}

func buildABC(t *testing.T) *Model {
	t.Helper()
	m, err := Build(abcBundle(), FlatEncoder(5, 3.5, defaultColor))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestBuildExampleScenario(t *testing.T) {
	m := buildABC(t)

	if m.NodeCount() != 3 || m.EdgeCount() != 2 {
		t.Fatalf("nodes=%d edges=%d", m.NodeCount(), m.EdgeCount())
	}

	edges := m.Edges()
	if edges[0].From != 0 || edges[0].To != 1 || edges[0].Level != Low || edges[0].LinkType != "causal" {
		t.Errorf("edge 0 = %+v", edges[0])
	}
	if edges[1].From != 1 || edges[1].To != 2 || edges[1].Level != Medium || edges[1].LinkType != "-" {
		t.Errorf("edge 1 = %+v", edges[1])
	}

	wantOut := map[string]int{"A": 1, "B": 1, "C": 0}
	wantIn := map[string]int{"A": 0, "B": 1, "C": 1}
	for _, n := range m.Nodes() {
		if n.OutDegree != wantOut[n.Label] || n.InDegree != wantIn[n.Label] {
			t.Errorf("%s: in=%d out=%d", n.Label, n.InDegree, n.OutDegree)
		}
		if want := 5 + 3.5*float64(wantOut[n.Label]); n.Size != want {
			t.Errorf("%s: size=%v, want %v", n.Label, n.Size, want)
		}
		if n.Color != defaultColor || n.BaseColor != defaultColor {
			t.Errorf("%s: color=%v", n.Label, n.Color)
		}
		if n.Position != nil {
			t.Errorf("%s: position set before layout", n.Label)
		}
	}

	if !m.Connected(1, 0) || m.Connected(0, 2) {
		t.Error("Connected must consider both directions and only real links")
	}
}

func TestBuildRejectsDuplicateLabels(t *testing.T) {
	b := abcBundle()
	b.Labels[2] = "A"
	if _, err := Build(b, FlatEncoder(5, 3.5, defaultColor)); !errors.Is(err, ErrDuplicateLabel) {
		t.Fatalf("err = %v, want ErrDuplicateLabel", err)
	}
}

func TestFilterOptions(t *testing.T) {
	b := abcBundle()
	b.Labels = []string{"zeta", "alpha", "mid"}
	m, err := Build(b, FlatEncoder(5, 3.5, defaultColor))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(m.FilterOptions(), ","); got != "all,alpha,mid,zeta" {
		t.Errorf("options = %s", got)
	}
}

func TestDetails(t *testing.T) {
	m := buildABC(t)

	d, ok := m.Details(0)
	if !ok {
		t.Fatal("details for A")
	}
	if d.MissingData || d.Classification != [3]string{"bajo", "medio", "alto"} || d.Description != "topic a" {
		t.Errorf("details A = %+v", d)
	}

	// C has no temporal row
	d, _ = m.Details(2)
	if !d.MissingData || d.Classification[0] != Placeholder {
		t.Errorf("details C = %+v", d)
	}
	if d.LongDescriptions[2] != "c3" {
		t.Errorf("present tables should still be filled: %+v", d)
	}

	if _, ok := m.Details(9); ok {
		t.Error("details for unknown id")
	}
}

func TestPositions(t *testing.T) {
	b := abcBundle()
	b.Positions = map[int]geom.Point{0: {X: 1, Y: 2}}
	m, err := Build(b, FlatEncoder(5, 3.5, defaultColor))
	if err != nil {
		t.Fatal(err)
	}

	saved := m.SavedPositions()
	if saved[0] != (geom.Point{X: 1, Y: 2}) {
		t.Errorf("saved = %v", saved)
	}
	saved[0] = geom.Point{}
	if m.SavedPositions()[0] != (geom.Point{X: 1, Y: 2}) {
		t.Error("SavedPositions must return a copy")
	}

	m.SetPositions(map[NodeID]geom.Point{1: {X: 5}, 42: {X: 9}})
	if got := m.Positions(); len(got) != 1 || got[1].X != 5 {
		t.Errorf("positions = %v", got)
	}

	n, _ := m.Node(1)
	n.Position.X = 100
	if m.Positions()[1].X != 5 {
		t.Error("Node must return a copy of the position")
	}

	if buildABC(t).SavedPositions() != nil {
		t.Error("no saved layout should yield nil")
	}
}

func TestMutations(t *testing.T) {
	m := buildABC(t)
	focus := MustRGB("#e63946")

	if err := m.SetColor(1, focus, true); err != nil {
		t.Fatal(err)
	}
	n, _ := m.Node(1)
	if n.Color != focus || !n.Highlighted {
		t.Errorf("node = %+v", n)
	}
	if err := m.ResetColor(1); err != nil {
		t.Fatal(err)
	}
	n, _ = m.Node(1)
	if n.Color != n.BaseColor || n.Highlighted {
		t.Errorf("node after reset = %+v", n)
	}

	if err := m.SetNodeHidden(2, true); err != nil {
		t.Fatal(err)
	}
	if m.IsVisible(2) || len(m.VisibleNodes()) != 2 {
		t.Error("node 2 should be hidden")
	}
	if err := m.SetNodeHidden(7, true); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("err = %v", err)
	}
	if err := m.SetEdgeHidden(5, true); !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestEdgeSummary(t *testing.T) {
	m := buildABC(t)
	s, ok := m.EdgeSummary(1)
	if !ok || s.From != "B" || s.To != "C" || s.Level != Medium || s.LinkType != "-" {
		t.Errorf("summary = %+v", s)
	}
}

func TestClassificationRank(t *testing.T) {
	tests := map[string]int{"bajo": 1, "Medio": 2, " alto ": 3, "": 0, "n/a": 0}
	for in, want := range tests {
		if got := ClassificationRank(in); got != want {
			t.Errorf("ClassificationRank(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestLevelWidth(t *testing.T) {
	if Low.Width() != 2 || Medium.Width() != 4 || High.Width() != 6 {
		t.Error("widths must be 2/4/6")
	}
}
