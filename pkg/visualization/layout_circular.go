package visualization

import (
	"math"

	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
)

// CircularLayout arranges nodes in a circle
type CircularLayout struct {
	config *LayoutConfig
}

// NewCircularLayout creates a new circular layout
func NewCircularLayout(config *LayoutConfig) *CircularLayout {
	return &CircularLayout{config: config}
}

// Place puts nodes on a circle around the origin in id order.
func (cl *CircularLayout) Place(ids []graph.NodeID, _ []Link) map[graph.NodeID]geom.Point {
	positions := make(map[graph.NodeID]geom.Point, len(ids))

	if len(ids) == 0 {
		return positions
	}

	radius := math.Max(0, math.Min(cl.config.Width, cl.config.Height)/2-cl.config.Padding)
	angleStep := 2 * math.Pi / float64(len(ids))

	for i, id := range ids {
		angle := float64(i) * angleStep
		positions[id] = geom.Point{
			X: radius * math.Cos(angle),
			Y: radius * math.Sin(angle),
		}
	}

	return positions
}
