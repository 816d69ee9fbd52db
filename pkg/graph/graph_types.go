package graph

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dd0wney/cluso-netmap/pkg/geom"
)

// NodeID is the matrix column index of a node.
type NodeID int

// EdgeID is the position of an edge in matrix scan order.
type EdgeID int

// None marks the absence of a node.
const None NodeID = -1

// Level is the strength of a link, taken from the matrix weight.
type Level int

const (
	Low    Level = 1
	Medium Level = 2
	High   Level = 3
)

func (l Level) String() string {
	switch l {
	case Low:
		return "Low"
	case Medium:
		return "Medium"
	case High:
		return "High"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Width is the drawn stroke width of an edge of this level.
func (l Level) Width() float64 {
	switch l {
	case Low:
		return 2
	case Medium:
		return 4
	case High:
		return 6
	default:
		return 1
	}
}

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// ParseRGB parses "#rrggbb".
func ParseRGB(hex string) (RGB, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return RGB{}, err
	}
	return fromColorful(c), nil
}

// MustRGB is ParseRGB for constants.
func MustRGB(hex string) RGB {
	c, err := ParseRGB(hex)
	if err != nil {
		panic(err)
	}
	return c
}

func (c RGB) Hex() string { return c.colorful().Hex() }

func (c RGB) String() string { return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B) }

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// Node is a topic. Position is nil until the node has been laid out.
type Node struct {
	ID          NodeID      `json:"id"`
	Label       string      `json:"label"`
	InDegree    int         `json:"in_degree"`
	OutDegree   int         `json:"out_degree"`
	Size        float64     `json:"size"`
	BaseColor   RGB         `json:"-"`
	Color       RGB         `json:"-"`
	Position    *geom.Point `json:"position,omitempty"`
	Hidden      bool        `json:"hidden"`
	Highlighted bool        `json:"highlighted"`
}

// Edge is a directed link between two topics.
type Edge struct {
	ID       EdgeID `json:"id"`
	From     NodeID `json:"from"`
	To       NodeID `json:"to"`
	Level    Level  `json:"level"`
	LinkType string `json:"link_type"`
	Hidden   bool   `json:"hidden"`
}

// Width is the drawn stroke width.
func (e Edge) Width() float64 { return e.Level.Width() }

// Visual is the output of an Encoder.
type Visual struct {
	Size  float64
	Color RGB
}
