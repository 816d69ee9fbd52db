package filter

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-netmap/pkg/config"
	"github.com/dd0wney/cluso-netmap/pkg/dataset"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
)

var base = graph.MustRGB("#186170")

func testPalette(t *testing.T) Palette {
	t.Helper()
	p, err := PaletteFromConfig(config.Default().Encoding)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func build(t *testing.T, labels []string, weights [][]int) *graph.Model {
	t.Helper()
	m, err := graph.Build(&dataset.Bundle{Labels: labels, Weights: weights}, graph.FlatEncoder(5, 3.5, base))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func abc(t *testing.T) *graph.Model {
	return build(t, []string{"A", "B", "C"}, [][]int{{0, 1, 0}, {0, 0, 2}, {0, 0, 0}})
}

func hiddenLabels(m *graph.Model) map[string]bool {
	out := map[string]bool{}
	for _, n := range m.Nodes() {
		out[n.Label] = n.Hidden
	}
	return out
}

func TestApplyExampleScenario(t *testing.T) {
	palette := testPalette(t)

	t.Run("focus B shows everything", func(t *testing.T) {
		m := abc(t)
		res, err := Apply(m, "B", palette)
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Visible) != 3 || res.FocusID != 1 {
			t.Errorf("result = %+v", res)
		}
		for _, e := range m.Edges() {
			if e.Hidden {
				t.Errorf("edge %d hidden", e.ID)
			}
		}
	})

	t.Run("focus A hides C and B->C", func(t *testing.T) {
		m := abc(t)
		if _, err := Apply(m, "A", palette); err != nil {
			t.Fatal(err)
		}
		h := hiddenLabels(m)
		if h["A"] || h["B"] || !h["C"] {
			t.Errorf("hidden = %v", h)
		}
		edges := m.Edges()
		if edges[0].Hidden || !edges[1].Hidden {
			t.Errorf("edges = %+v", edges)
		}

		a, _ := m.Node(0)
		b, _ := m.Node(1)
		if a.Color != palette.Base || !a.Highlighted {
			t.Errorf("focal node = %+v", a)
		}
		if b.Color != base || b.Highlighted {
			t.Errorf("neighbour = %+v", b)
		}
	})
}

func TestApplyUnknownFocus(t *testing.T) {
	m := abc(t)
	palette := testPalette(t)
	if _, err := Apply(m, "A", palette); err != nil {
		t.Fatal(err)
	}
	before := hiddenLabels(m)

	if _, err := Apply(m, "Z", palette); !errors.Is(err, ErrUnknownFocus) {
		t.Fatalf("err = %v, want ErrUnknownFocus", err)
	}
	after := hiddenLabels(m)
	for l := range before {
		if before[l] != after[l] {
			t.Errorf("%s visibility changed on failed filter", l)
		}
	}
}

func TestFilterRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	labels := []string{"n0", "n1", "n2", "n3", "n4"}

	properties.Property("focus then all restores every node and edge", prop.ForAll(
		func(cells []int, focus int) bool {
			if len(cells) < len(labels)*len(labels) {
				return true
			}
			w := make([][]int, len(labels))
			for i := range w {
				w[i] = cells[i*len(labels) : (i+1)*len(labels)]
			}
			m := build(t, labels, w)
			palette := testPalette(t)

			if _, err := Apply(m, labels[focus], palette); err != nil {
				return false
			}
			if _, err := Apply(m, All, palette); err != nil {
				return false
			}

			for _, n := range m.Nodes() {
				if n.Hidden || n.Highlighted || n.Color != n.BaseColor {
					return false
				}
			}
			for _, e := range m.Edges() {
				if e.Hidden {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(len(labels)*len(labels), gen.IntRange(0, 3)),
		gen.IntRange(0, len(labels)-1),
	))

	properties.TestingRun(t)
}
