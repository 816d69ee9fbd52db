package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
	"github.com/dd0wney/cluso-netmap/pkg/hittest"
)

type cell struct {
	r     rune
	style *lipgloss.Style
}

// canvas is a grid of styled runes.
type canvas struct {
	cols, rows int
	cells      []cell
	styles     map[string]*lipgloss.Style
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows, cells: make([]cell, cols*rows), styles: map[string]*lipgloss.Style{}}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

func (c *canvas) set(x, y int, r rune, st *lipgloss.Style) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	c.cells[y*c.cols+x] = cell{r: r, style: st}
}

func (c *canvas) text(x, y int, s string, st *lipgloss.Style) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, st)
	}
}

// color returns a cached foreground style.
func (c *canvas) color(hex string, bold bool) *lipgloss.Style {
	k := hex
	if bold {
		k += "!"
	}
	if st, ok := c.styles[k]; ok {
		return st
	}
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Bold(bold)
	c.styles[k] = &st
	return &st
}

// render joins runs of equally styled cells in columns [from, to).
func (c *canvas) render(from, to int) string {
	var b strings.Builder
	for y := 0; y < c.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		var run []rune
		var cur *lipgloss.Style
		flush := func() {
			if len(run) == 0 {
				return
			}
			if cur == nil {
				b.WriteString(string(run))
			} else {
				b.WriteString(cur.Render(string(run)))
			}
			run = run[:0]
		}
		for x := max(from, 0); x < min(to, c.cols); x++ {
			cl := c.cells[y*c.cols+x]
			if cl.style != cur {
				flush()
				cur = cl.style
			}
			run = append(run, cl.r)
		}
		flush()
	}
	return b.String()
}

var edgeRunes = map[graph.Level]rune{graph.Low: '·', graph.Medium: '•', graph.High: '█'}

func (m viewModel) renderGraph(rows int) string {
	s := m.snap
	c := newCanvas(m.width, rows)
	vp := s.Viewport
	half := geom.Point{X: vp.Container.W / 2, Y: vp.Container.H / 2}

	// model point to canvas cell
	toCell := func(p geom.Point) (int, int) {
		q := p.Sub(vp.Center).Scale(vp.Scale).Add(half)
		return int(math.Floor(q.X / cellW)), int(math.Floor(q.Y / cellH))
	}

	plain := edgeStyle
	active := activeEdgeStyle
	sel := s.Selection.Selected
	for _, e := range s.Edges {
		if e.Hidden {
			continue
		}
		a, b := s.Nodes[e.From].Position, s.Nodes[e.To].Position
		if a == nil || b == nil {
			continue
		}
		st := &plain
		if (sel != graph.None && (e.From == sel || e.To == sel)) || (s.Tooltip.Visible && s.Tooltip.Edge == e.ID) {
			st = &active
		}
		x0, y0 := toCell(*a)
		x1, y1 := toCell(*b)
		steps := max(abs(x1-x0), abs(y1-y0))
		for i := 1; i < steps; i++ {
			t := float64(i) / float64(steps)
			x := x0 + int(math.Round(t*float64(x1-x0)))
			y := y0 + int(math.Round(t*float64(y1-y0)))
			c.set(x, y, edgeRunes[e.Level], st)
		}
	}

	cursor, _ := m.cursorNode()
	for _, n := range s.Nodes {
		if n.Hidden || n.Position == nil {
			continue
		}
		x, y := toCell(*n.Position)
		glyph := '●'
		switch {
		case n.ID == sel:
			glyph = '◆'
		case n.Highlighted:
			glyph = '◉'
		}
		bold := n.ID == sel || n.ID == cursor || (s.Hover.Kind == hittest.NodeHit && s.Hover.Node == n.ID)
		st := c.color(n.Color.Hex(), bold)
		c.set(x, y, glyph, st)
		if bold || vp.Scale >= 1 {
			label := n.Label
			if n.ID == cursor {
				label = "[" + label + "]"
			}
			c.text(x+2, y, label, st)
		}
	}

	if t := s.Tooltip; t.Visible {
		tip := tooltipStyle
		if t.Fading {
			tip = tip.Faint(true)
		}
		x := int(t.Position.X / cellW)
		y := int((t.Position.Y - headerRows*cellH) / cellH)
		for i, line := range t.Content.Lines() {
			c.text(x, y+i, " "+line+" ", &tip)
		}
	}

	if s.Details == nil || !s.Selection.PanelVisible {
		return c.render(0, m.width)
	}

	// the panel covers the left of the canvas
	panelCols := panelColumns(m.width)
	panel := panelStyle.
		Width(panelCols - 2).
		Height(rows - 2).
		Render(renderDetails(*s.Details, panelCols-4))
	return lipgloss.JoinHorizontal(lipgloss.Top, panel, c.render(panelCols, m.width))
}

const minPanelCols = 24

// panelColumns is the detail panel width in cells: a quarter of the
// screen but at least minPanelCols. The view reports the same width to the
// engine so the camera shift matches what is drawn.
func panelColumns(width int) int {
	return min(max(width/4, minPanelCols), max(width, 0))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
