package hittest

import (
	"fmt"
	"unicode/utf8"

	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
)

// Content is the text of an edge tooltip.
type Content struct {
	From     string
	To       string
	Level    string
	LinkType string
}

// ContentFor formats an edge summary.
func ContentFor(s graph.EdgeSummary) Content {
	return Content{From: s.From, To: s.To, Level: s.Level.String(), LinkType: s.LinkType}
}

// Lines renders the content one field per line.
func (c Content) Lines() []string {
	return []string{
		fmt.Sprintf("From: %s", c.From),
		fmt.Sprintf("To: %s", c.To),
		fmt.Sprintf("Link level: %s", c.Level),
		fmt.Sprintf("Link type: %s", c.LinkType),
	}
}

// Box is the size of the rendered content: the widest line plus one
// padding character on each side, one line per field.
func (c Content) Box(charW, lineH float64) geom.Size {
	lines := c.Lines()
	widest := 0
	for _, l := range lines {
		widest = max(widest, utf8.RuneCountInString(l))
	}
	return geom.Size{W: float64(widest+2) * charW, H: float64(len(lines)) * lineH}
}

// Tooltip is the state of the floating tooltip. Position is in window
// pixels. Fading is set while the hide timer runs.
type Tooltip struct {
	Visible  bool         `json:"visible"`
	Fading   bool         `json:"fading"`
	Edge     graph.EdgeID `json:"edge"`
	Content  Content      `json:"content"`
	Position geom.Point   `json:"position"`
}

// Place puts a box of size box at pointer + margin, flipping to the left or
// above the pointer when it would overflow the window.
func Place(pointer geom.Point, box, window geom.Size, margin float64) geom.Point {
	x := pointer.X + margin
	if x+box.W > window.W {
		x = pointer.X - margin - box.W
	}
	y := pointer.Y + margin
	if y+box.H > window.H {
		y = pointer.Y - margin - box.H
	}
	return geom.Point{X: max(x, 0), Y: max(y, 0)}
}
