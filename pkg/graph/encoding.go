package graph

import (
	"fmt"

	"github.com/dd0wney/cluso-netmap/pkg/config"
)

// Encoder derives the visual size and color of a node from its degrees.
type Encoder func(n Node, stats DegreeStats) Visual

// FlatEncoder sizes nodes by out-degree and paints them all the same color,
// leaving color free for filter highlighting.
func FlatEncoder(base, factor float64, color RGB) Encoder {
	return func(n Node, _ DegreeStats) Visual {
		return Visual{Size: base + float64(n.OutDegree)*factor, Color: color}
	}
}

// GradientEncoder sizes nodes by in-degree and blends from one color to the
// other by normalized in-degree.
func GradientEncoder(from, to RGB) Encoder {
	a, b := from.colorful(), to.colorful()
	return func(n Node, stats DegreeStats) Visual {
		t := stats.InRatio(n.ID)
		return Visual{
			Size:  16 + float64(n.InDegree)*1.5,
			Color: fromColorful(a.BlendRgb(b, t)),
		}
	}
}

// NewEncoder returns the encoder selected by cfg.Mode.
func NewEncoder(cfg config.EncodingConfig) (Encoder, error) {
	switch cfg.Mode {
	case "", "flat":
		c, err := ParseRGB(cfg.DefaultColor)
		if err != nil {
			return nil, fmt.Errorf("default color: %w", err)
		}
		return FlatEncoder(cfg.BaseSize, cfg.SizeFactor, c), nil
	case "gradient":
		from, err := ParseRGB(cfg.GradientFrom)
		if err != nil {
			return nil, fmt.Errorf("gradient from: %w", err)
		}
		to, err := ParseRGB(cfg.GradientTo)
		if err != nil {
			return nil, fmt.Errorf("gradient to: %w", err)
		}
		return GradientEncoder(from, to), nil
	default:
		return nil, fmt.Errorf("unknown encoding mode %q", cfg.Mode)
	}
}
