package viewport

import (
	"errors"
	"time"

	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
)

// ErrLayoutNotReady is reported internally when an operation runs before
// the layout engine exists. Public operations treat it as a no-op.
var ErrLayoutNotReady = errors.New("layout not ready")

// minScaleDivisor guards panel shift math against a near-zero scale.
const minScaleDivisor = 1e-3

// Layout is the physics engine the camera fits against.
type Layout interface {
	Ready() bool
	Bounds(ids []graph.NodeID) (geom.Rect, bool)
	SetPositions(positions map[graph.NodeID]geom.Point)
	SetPhysics(enabled bool)
	// Stabilize runs at most iterations solver steps and returns how many ran.
	Stabilize(iterations int) int
}

// AnimationKind names what a bounce animation restores.
type AnimationKind string

const (
	ZoomBounce AnimationKind = "zoom"
	PanBounce  AnimationKind = "pan"
)

// Animation describes a bounce back into bounds. The controller state is
// already at the target; renderers may ease from From to To over Duration.
type Animation struct {
	Kind       AnimationKind
	FromScale  float64
	ToScale    float64
	FromCenter geom.Point
	ToCenter   geom.Point
	Duration   time.Duration
}

// State is a read-only copy of the camera.
type State struct {
	Scale      float64    `json:"scale"`
	Center     geom.Point `json:"center"`
	Container  geom.Size  `json:"container"`
	Window     geom.Size  `json:"window"`
	PanelWidth float64    `json:"panel_width"`
	PanelOpen  bool       `json:"panel_open"`
	Shifted    bool       `json:"panel_shifted"`
	Animation  *Animation `json:"animation,omitempty"`
}

// Options configure a Controller.
type Options struct {
	MinScale            float64
	MaxScale            float64
	PanLimitFactor      float64
	FitZoomOut          float64
	FilterZoomOut       float64
	FitMargin           float64
	ClampDuration       time.Duration
	PanelWidthFraction  float64
	RandomExtent        float64
	RandomizeIterations int
}
