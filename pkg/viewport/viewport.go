// Package viewport owns the camera: zoom and pan limits, panel-aware
// recentering and the fit, reset and randomize operations.
package viewport

import (
	"math"
	"math/rand/v2"

	"github.com/dd0wney/cluso-netmap/pkg/config"
	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
	"github.com/dd0wney/cluso-netmap/pkg/logging"
	"github.com/dd0wney/cluso-netmap/pkg/schedule"
)

// OptionsFromConfig merges the viewport and physics sections.
func OptionsFromConfig(vp config.ViewportConfig, phys config.PhysicsConfig) Options {
	return Options{
		MinScale:            vp.MinScale,
		MaxScale:            vp.MaxScale,
		PanLimitFactor:      vp.PanLimitFactor,
		FitZoomOut:          vp.FitZoomOut,
		FilterZoomOut:       vp.FilterZoomOut,
		FitMargin:           vp.FitMargin,
		ClampDuration:       vp.ClampDuration,
		PanelWidthFraction:  vp.PanelWidthFraction,
		RandomExtent:        phys.RandomExtent,
		RandomizeIterations: phys.RandomizeIterations,
	}
}

// Controller is the camera. It is not safe for concurrent use.
type Controller struct {
	opts   Options
	layout Layout
	sched  schedule.Scheduler
	logger logging.Logger

	scale     float64
	center    geom.Point
	container geom.Size
	window    geom.Size

	explicitPanel float64
	panelOpen     bool
	shifted       bool

	clamping  bool
	animation *Animation
	animDone  schedule.Cancel
}

// New creates a controller at scale 1 centered on the origin.
func New(opts Options, layout Layout, sched schedule.Scheduler, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Controller{
		opts:   opts,
		layout: layout,
		sched:  sched,
		logger: logger.With(logging.Component("viewport")),
		scale:  geom.Clamp(1, opts.MinScale, opts.MaxScale),
	}
}

// SetLayout attaches the layout engine once it exists.
func (c *Controller) SetLayout(l Layout) { c.layout = l }

func (c *Controller) requireLayout(op string) error {
	if c.layout == nil || !c.layout.Ready() {
		c.logger.Debug("ignored before layout", logging.Operation(op))
		return ErrLayoutNotReady
	}
	return nil
}

// State returns a copy of the camera.
func (c *Controller) State() State {
	s := State{
		Scale:      c.scale,
		Center:     c.center,
		Container:  c.container,
		Window:     c.window,
		PanelWidth: c.PanelWidth(),
		PanelOpen:  c.panelOpen,
		Shifted:    c.shifted,
	}
	if c.animation != nil {
		a := *c.animation
		s.Animation = &a
	}
	return s
}

func (c *Controller) Scale() float64     { return c.scale }
func (c *Controller) Center() geom.Point { return c.center }

// PanelWidth is the effective detail panel width in pixels.
func (c *Controller) PanelWidth() float64 {
	if c.explicitPanel > 0 {
		return c.explicitPanel
	}
	return c.container.W * c.opts.PanelWidthFraction
}

// SetPanelWidth overrides the fraction-derived width. Zero restores it.
func (c *Controller) SetPanelWidth(px float64) {
	c.explicitPanel = math.Max(0, px)
}

// Resize records the canvas and window sizes in pixels.
func (c *Controller) Resize(container, window geom.Size) {
	c.container = container
	c.window = window
}

// ToModel projects a canvas-local pixel position into model space.
func (c *Controller) ToModel(p geom.Point) geom.Point {
	half := geom.Point{X: c.container.W / 2, Y: c.container.H / 2}
	return p.Sub(half).Scale(1 / c.scale).Add(c.center)
}

// ToScreen projects a model position to canvas-local pixels.
func (c *Controller) ToScreen(p geom.Point) geom.Point {
	half := geom.Point{X: c.container.W / 2, Y: c.container.H / 2}
	return p.Sub(c.center).Scale(c.scale).Add(half)
}

// Zoom multiplies the scale by factor keeping anchor (canvas pixels) fixed.
// The scale never leaves [MinScale, MaxScale]; an out-of-range request
// starts a bounce animation unless one is already running. It reports
// whether the request was clamped.
func (c *Controller) Zoom(factor float64, anchor geom.Point) bool {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return false
	}

	requested := c.scale * factor
	target := geom.Clamp(requested, c.opts.MinScale, c.opts.MaxScale)

	fixed := c.ToModel(anchor)
	c.scale = target
	c.center = c.anchorCenter(fixed, anchor)

	if requested == target {
		return false
	}
	if !c.clamping {
		c.clamping = true
		c.animate(Animation{
			Kind:       ZoomBounce,
			FromScale:  requested,
			ToScale:    target,
			FromCenter: c.center,
			ToCenter:   c.center,
			Duration:   c.opts.ClampDuration,
		})
	}
	return true
}

func (c *Controller) anchorCenter(model, screen geom.Point) geom.Point {
	half := geom.Point{X: c.container.W / 2, Y: c.container.H / 2}
	return model.Sub(screen.Sub(half).Scale(1 / c.scale))
}

// Pan drags the camera by a pixel delta.
func (c *Controller) Pan(dx, dy float64) {
	c.center = c.center.Sub(geom.Point{X: dx, Y: dy}.Scale(1 / c.scale))
}

// ClampPan pulls the center back within ±container×PanLimitFactor. It
// reports whether the center moved.
func (c *Controller) ClampPan() bool {
	limX := c.container.W * c.opts.PanLimitFactor
	limY := c.container.H * c.opts.PanLimitFactor

	target := geom.Point{
		X: geom.Clamp(c.center.X, -limX, limX),
		Y: geom.Clamp(c.center.Y, -limY, limY),
	}
	if target == c.center {
		return false
	}

	from := c.center
	c.center = target
	c.animate(Animation{
		Kind:       PanBounce,
		FromScale:  c.scale,
		ToScale:    c.scale,
		FromCenter: from,
		ToCenter:   target,
		Duration:   c.opts.ClampDuration,
	})
	return true
}

func (c *Controller) animate(a Animation) {
	if c.animDone != nil {
		c.animDone()
	}
	c.animation = &a
	c.animDone = c.sched.AfterFunc(a.Duration, func() {
		c.animation = nil
		c.animDone = nil
		c.clamping = false
	})
}

// ShiftForPanel moves the camera horizontally by half the panel width in
// model units at the current scale. Opening moves the center left so the
// content slides right of the panel; closing reverses a previous shift.
func (c *Controller) ShiftForPanel(opening bool) {
	c.panelOpen = opening
	if err := c.requireLayout("shift"); err != nil {
		return
	}

	switch {
	case opening && !c.shifted:
		c.center.X -= c.panelDX()
		c.shifted = true
	case !opening && c.shifted:
		c.center.X += c.panelDX()
		c.shifted = false
	}
}

func (c *Controller) panelDX() float64 {
	return (c.PanelWidth() / 2) / math.Max(c.scale, minScaleDivisor)
}

// FitToVisible frames ids with the configured margin, scales the result by
// zoomOut and re-clamps. An open panel gets its offset re-applied.
func (c *Controller) FitToVisible(ids []graph.NodeID, zoomOut float64) {
	if err := c.requireLayout("fit"); err != nil {
		return
	}
	c.fit(ids, zoomOut)
}

func (c *Controller) fit(ids []graph.NodeID, zoomOut float64) {
	bounds, ok := c.layout.Bounds(ids)
	if !ok || c.container.W <= 0 || c.container.H <= 0 {
		return
	}

	framed := bounds.Inset(c.opts.FitMargin)
	scale := math.Min(c.container.W/framed.Width(), c.container.H/framed.Height())
	c.scale = geom.Clamp(scale*zoomOut, c.opts.MinScale, c.opts.MaxScale)
	c.center = bounds.Center()
	c.shifted = false

	if c.panelOpen {
		c.center.X -= c.panelDX()
		c.shifted = true
	}
}

// Reset restores saved positions when given, otherwise leaves placement to
// physics, then refits ids with the initial zoom-out.
func (c *Controller) Reset(saved map[graph.NodeID]geom.Point, ids []graph.NodeID) {
	if err := c.requireLayout("reset"); err != nil {
		return
	}

	c.layout.SetPhysics(false)
	if saved != nil {
		c.layout.SetPositions(saved)
	}
	c.fit(ids, c.opts.FitZoomOut)
	c.layout.SetPhysics(true)
}

// Randomize scatters ids uniformly in ±RandomExtent, refits and runs a
// bounded stabilization pass. It returns the number of solver steps run.
func (c *Controller) Randomize(rng *rand.Rand, ids []graph.NodeID) int {
	if err := c.requireLayout("randomize"); err != nil {
		return 0
	}

	ext := c.opts.RandomExtent
	positions := make(map[graph.NodeID]geom.Point, len(ids))
	for _, id := range ids {
		positions[id] = geom.Point{
			X: (rng.Float64()*2 - 1) * ext,
			Y: (rng.Float64()*2 - 1) * ext,
		}
	}

	c.layout.SetPositions(positions)
	c.layout.SetPhysics(true)
	c.fit(ids, c.opts.FitZoomOut)
	return c.layout.Stabilize(c.opts.RandomizeIterations)
}

// Stop cancels a running bounce animation.
func (c *Controller) Stop() {
	if c.animDone != nil {
		c.animDone()
		c.animDone = nil
	}
	c.animation = nil
	c.clamping = false
}
