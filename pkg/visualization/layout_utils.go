package visualization

import (
	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
)

// Normalize scales positions to fill a width×height box centered on the
// origin, keeping padding from its edges.
func Normalize(positions map[graph.NodeID]geom.Point, width, height, padding float64) map[graph.NodeID]geom.Point {
	if len(positions) == 0 {
		return positions
	}

	pts := make([]geom.Point, 0, len(positions))
	for _, p := range positions {
		pts = append(pts, p)
	}
	bounds, _ := geom.Bounds(pts)

	rangeX := bounds.Width()
	rangeY := bounds.Height()
	if rangeX < 0.01 {
		rangeX = 1
	}
	if rangeY < 0.01 {
		rangeY = 1
	}

	targetWidth := width - 2*padding
	targetHeight := height - 2*padding

	normalized := make(map[graph.NodeID]geom.Point, len(positions))
	for id, p := range positions {
		normalized[id] = geom.Point{
			X: -targetWidth/2 + ((p.X-bounds.Min.X)/rangeX)*targetWidth,
			Y: -targetHeight/2 + ((p.Y-bounds.Min.Y)/rangeY)*targetHeight,
		}
	}

	return normalized
}
