package visualization

import (
	"math/rand/v2"

	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
)

// RandomLayout scatters nodes uniformly inside the box.
type RandomLayout struct {
	config *LayoutConfig
	rng    *rand.Rand
}

// NewRandomLayout creates a random layout drawing from rng.
func NewRandomLayout(config *LayoutConfig, rng *rand.Rand) *RandomLayout {
	return &RandomLayout{config: config, rng: rng}
}

func (rl *RandomLayout) Place(ids []graph.NodeID, _ []Link) map[graph.NodeID]geom.Point {
	halfW := rl.config.Width/2 - rl.config.Padding
	halfH := rl.config.Height/2 - rl.config.Padding

	positions := make(map[graph.NodeID]geom.Point, len(ids))
	for _, id := range ids {
		positions[id] = geom.Point{
			X: (rl.rng.Float64()*2 - 1) * halfW,
			Y: (rl.rng.Float64()*2 - 1) * halfH,
		}
	}
	return positions
}
