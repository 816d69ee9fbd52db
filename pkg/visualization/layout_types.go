package visualization

import (
	"fmt"
	"math/rand/v2"

	"github.com/dd0wney/cluso-netmap/pkg/config"
	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
)

// Link is an undirected spring between two nodes.
type Link struct {
	From graph.NodeID
	To   graph.NodeID
}

// LinksOf returns one link per edge of the model.
func LinksOf(m *graph.Model) []Link {
	edges := m.Edges()
	links := make([]Link, 0, len(edges))
	for _, e := range edges {
		links = append(links, Link{From: e.From, To: e.To})
	}
	return links
}

// LayoutConfig bounds an initial placement. The box is centered on the
// model origin.
type LayoutConfig struct {
	Width      float64 // Box width in model units
	Height     float64 // Box height in model units
	Iterations int     // Number of iterations for iterative algorithms
	Padding    float64 // Padding from edges
}

// Placement computes starting positions before the solver runs.
type Placement interface {
	Place(ids []graph.NodeID, links []Link) map[graph.NodeID]geom.Point
}

// NewPlacement returns the placement named by the physics config.
func NewPlacement(cfg config.PhysicsConfig, rng *rand.Rand) (Placement, error) {
	box := &LayoutConfig{
		Width:  2 * cfg.RandomExtent,
		Height: 2 * cfg.RandomExtent,
	}
	switch cfg.InitialLayout {
	case "", "random":
		return NewRandomLayout(box, rng), nil
	case "circular":
		return NewCircularLayout(box), nil
	case "force":
		box.Iterations = cfg.StabilizationIterations
		return NewForceDirectedLayout(box, rng), nil
	default:
		return nil, fmt.Errorf("unknown initial layout %q", cfg.InitialLayout)
	}
}

// Params are the repulsion solver constants.
type Params struct {
	NodeDistance   float64
	CentralGravity float64
	SpringLength   float64
	SpringConstant float64
	Damping        float64
	TimeStep       float64
	MaxVelocity    float64
	MinVelocity    float64
}

// ParamsFromConfig copies the solver constants.
func ParamsFromConfig(cfg config.PhysicsConfig) Params {
	return Params{
		NodeDistance:   cfg.NodeDistance,
		CentralGravity: cfg.CentralGravity,
		SpringLength:   cfg.SpringLength,
		SpringConstant: cfg.SpringConstant,
		Damping:        cfg.Damping,
		TimeStep:       cfg.TimeStep,
		MaxVelocity:    cfg.MaxVelocity,
		MinVelocity:    cfg.MinVelocity,
	}
}
