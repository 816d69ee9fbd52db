package visualization

import (
	"math"
	"math/rand/v2"

	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
)

// ForceDirectedLayout is a Fruchterman-Reingold placement. It is a one-shot
// computation, unlike the live Simulation.
type ForceDirectedLayout struct {
	config *LayoutConfig
	rng    *rand.Rand
}

// NewForceDirectedLayout creates a new force-directed layout
func NewForceDirectedLayout(config *LayoutConfig, rng *rand.Rand) *ForceDirectedLayout {
	if config.Iterations == 0 {
		config.Iterations = 50
	}
	return &ForceDirectedLayout{config: config, rng: rng}
}

// Place computes positions using force-directed algorithm
func (fdl *ForceDirectedLayout) Place(ids []graph.NodeID, links []Link) map[graph.NodeID]geom.Point {
	if len(ids) == 0 {
		return make(map[graph.NodeID]geom.Point)
	}

	// Single node - center it
	if len(ids) == 1 {
		return map[graph.NodeID]geom.Point{ids[0]: {}}
	}

	positions := NewRandomLayout(fdl.config, fdl.rng).Place(ids, nil)

	neighbours := make(map[graph.NodeID]map[graph.NodeID]bool, len(ids))
	for _, id := range ids {
		neighbours[id] = make(map[graph.NodeID]bool)
	}
	for _, l := range links {
		if l.From == l.To {
			continue
		}
		if _, ok := neighbours[l.From]; !ok {
			continue
		}
		if _, ok := neighbours[l.To]; !ok {
			continue
		}
		neighbours[l.From][l.To] = true
		neighbours[l.To][l.From] = true
	}

	k := math.Sqrt((fdl.config.Width * fdl.config.Height) / float64(len(ids))) // Optimal distance
	temperature := fdl.config.Width / 10.0

	for iter := 0; iter < fdl.config.Iterations; iter++ {
		forces := make(map[graph.NodeID]geom.Point, len(ids))

		// Repulsion between all nodes
		for i, a := range ids {
			for _, b := range ids[i+1:] {
				d := positions[a].Sub(positions[b])
				dist := math.Max(math.Hypot(d.X, d.Y), 0.01)

				f := d.Scale((k * k) / dist / dist)
				forces[a] = forces[a].Add(f)
				forces[b] = forces[b].Sub(f)
			}
		}

		// Attraction between connected nodes
		for _, a := range ids {
			for b := range neighbours[a] {
				d := positions[a].Sub(positions[b])
				dist := math.Hypot(d.X, d.Y)
				if dist < 0.01 {
					continue
				}
				forces[a] = forces[a].Sub(d.Scale(dist / k))
			}
		}

		// Apply forces with cooling
		cool := 1.0 - float64(iter)/float64(fdl.config.Iterations)
		for _, id := range ids {
			f := forces[id]
			force := math.Hypot(f.X, f.Y)
			if force > 0 {
				step := math.Min(force, temperature) * cool / force
				positions[id] = positions[id].Add(f.Scale(step))
			}
		}

		temperature *= 0.95
	}

	return Normalize(positions, fdl.config.Width, fdl.config.Height, fdl.config.Padding)
}
