// Package filter narrows the visible graph to a focal topic and its direct
// neighbours.
package filter

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-netmap/pkg/config"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
)

// All is the focus value that shows the whole graph.
const All = graph.AllLabel

var ErrUnknownFocus = errors.New("unknown focus label")

// Palette colors the focal node. Hover and Select are the shades a renderer
// uses while the focal node is hovered or selected.
type Palette struct {
	Base   graph.RGB
	Hover  graph.RGB
	Select graph.RGB
}

// PaletteFromConfig parses the focus colors.
func PaletteFromConfig(cfg config.EncodingConfig) (Palette, error) {
	var p Palette
	var err error
	if p.Base, err = graph.ParseRGB(cfg.FocusColor); err != nil {
		return Palette{}, fmt.Errorf("focus color: %w", err)
	}
	if p.Hover, err = graph.ParseRGB(cfg.FocusHoverColor); err != nil {
		return Palette{}, fmt.Errorf("focus hover color: %w", err)
	}
	if p.Select, err = graph.ParseRGB(cfg.FocusSelectColor); err != nil {
		return Palette{}, fmt.Errorf("focus select color: %w", err)
	}
	return p, nil
}

// Result summarizes an applied filter.
type Result struct {
	Focus   string
	FocusID graph.NodeID // graph.None for All
	Visible []graph.NodeID
}

// Apply recomputes visibility and color of every node and edge for focus.
// An unknown label returns ErrUnknownFocus and leaves the model untouched.
func Apply(m *graph.Model, focus string, palette Palette) (Result, error) {
	if focus == "" || focus == All {
		for _, id := range m.AllNodes() {
			m.SetNodeHidden(id, false)
			m.ResetColor(id)
		}
		for _, e := range m.Edges() {
			m.SetEdgeHidden(e.ID, false)
		}
		return Result{Focus: All, FocusID: graph.None, Visible: m.AllNodes()}, nil
	}

	f, ok := m.Lookup(focus)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownFocus, focus)
	}

	res := Result{Focus: focus, FocusID: f}
	for _, id := range m.AllNodes() {
		visible := id == f || m.Connected(id, f)
		m.SetNodeHidden(id, !visible)
		if id == f {
			m.SetColor(id, palette.Base, true)
		} else {
			m.ResetColor(id)
		}
		if visible {
			res.Visible = append(res.Visible, id)
		}
	}
	for _, e := range m.Edges() {
		m.SetEdgeHidden(e.ID, e.From != f && e.To != f)
	}
	return res, nil
}
