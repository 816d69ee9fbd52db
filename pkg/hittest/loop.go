package hittest

import (
	"time"

	"github.com/dd0wney/cluso-netmap/pkg/config"
	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
	"github.com/dd0wney/cluso-netmap/pkg/schedule"
)

// Projector maps canvas-local pixels to model space.
type Projector interface {
	ToModel(p geom.Point) geom.Point
	Scale() float64
}

// Summarizer supplies tooltip content for an edge.
type Summarizer interface {
	EdgeSummary(id graph.EdgeID) (graph.EdgeSummary, bool)
}

// Options tune the loop.
type Options struct {
	FrameInterval time.Duration
	FadeDuration  time.Duration
	Margin        float64   // window pixels between pointer and tooltip
	EdgeTolerance float64 // pixels added to half the stroke width
	CharWidth     float64 // tooltip text metrics used for edge avoidance
	LineHeight    float64
}

// OptionsFromConfig copies the tooltip section.
func OptionsFromConfig(cfg config.TooltipConfig) Options {
	return Options{
		FrameInterval: cfg.FrameInterval,
		FadeDuration:  cfg.FadeDuration,
		Margin:        cfg.Margin,
		EdgeTolerance: cfg.EdgeTolerance,
		CharWidth:     cfg.CharWidth,
		LineHeight:    cfg.LineHeight,
	}
}

// Hooks observe the loop. Both are optional.
type Hooks struct {
	OnFrame  func(Hit)
	OnChange func(Tooltip)
}

// Loop tests the last pointer position once per frame. It is not safe for
// concurrent use; scheduler callbacks must run on the owner's goroutine.
type Loop struct {
	scene   Scene
	summary Summarizer
	proj    Projector
	sched   schedule.Scheduler
	opts    Options
	hooks   Hooks

	canvas     geom.Rect
	window     geom.Size
	pointer    geom.Point
	hasPointer bool
	blocked    func() bool

	hover    Hit
	lastEdge graph.EdgeID
	tooltip  Tooltip

	frame  schedule.Cancel
	fade   schedule.Cancel
	frames uint64
}

// NewLoop creates a stopped loop.
func NewLoop(scene Scene, summary Summarizer, proj Projector, sched schedule.Scheduler, opts Options, hooks Hooks) *Loop {
	return &Loop{
		scene:    scene,
		summary:  summary,
		proj:     proj,
		sched:    sched,
		opts:     opts,
		hooks:    hooks,
		hover:    miss,
		lastEdge: -1,
		tooltip:  Tooltip{Edge: -1},
	}
}

// SetBlocked installs a check consulted every frame; while it returns true
// nothing is hovered and the tooltip stays hidden.
func (l *Loop) SetBlocked(fn func() bool) { l.blocked = fn }

// SetCanvas records the canvas rectangle in window pixels.
func (l *Loop) SetCanvas(r geom.Rect) { l.canvas = r }

// SetWindow records the window size used to keep the tooltip on screen.
func (l *Loop) SetWindow(s geom.Size) { l.window = s }

// MovePointer records the pointer in window pixels. It is picked up on the
// next frame.
func (l *Loop) MovePointer(p geom.Point) {
	l.pointer = p
	l.hasPointer = true
}

// LeaveWindow forgets the pointer.
func (l *Loop) LeaveWindow() { l.hasPointer = false }

func (l *Loop) Tooltip() Tooltip { return l.tooltip }
func (l *Loop) Hover() Hit       { return l.hover }
func (l *Loop) Frames() uint64   { return l.frames }

// Handle cancels a running loop.
type Handle struct {
	loop    *Loop
	stopped bool
}

// Start schedules the first frame and returns the handle that stops it.
// Starting a running loop restarts it.
func (l *Loop) Start() *Handle {
	l.cancelFrame()
	l.scheduleFrame()
	return &Handle{loop: l}
}

// Stop cancels the frame and fade timers and removes the tooltip.
// Stopping twice is harmless.
func (h *Handle) Stop() {
	if h == nil || h.stopped {
		return
	}
	h.stopped = true
	h.loop.cancelFrame()
	h.loop.Hide()
}

// Hide removes the tooltip at once and forgets the hovered edge, skipping
// the fade.
func (l *Loop) Hide() {
	l.cancelFade()
	l.hover = miss
	l.lastEdge = -1
	l.hideNow()
}

func (l *Loop) scheduleFrame() {
	l.frame = l.sched.AfterFunc(l.opts.FrameInterval, func() {
		l.frame = nil
		l.Tick()
		l.scheduleFrame()
	})
}

func (l *Loop) cancelFrame() {
	if l.frame != nil {
		l.frame()
		l.frame = nil
	}
}

func (l *Loop) cancelFade() {
	if l.fade != nil {
		l.fade()
		l.fade = nil
	}
	l.tooltip.Fading = false
}

// Tick runs one hit test against the last pointer position.
func (l *Loop) Tick() {
	l.frames++
	hit := l.test()
	l.hover = hit

	switch hit.Kind {
	case NodeHit:
		l.lastEdge = -1
		l.cancelFade()
		l.hideNow()
	case EdgeHit:
		l.cancelFade()
		if hit.Edge != l.lastEdge || !l.tooltip.Visible {
			l.show(hit.Edge)
		}
		l.lastEdge = hit.Edge
		l.follow()
	default:
		l.lastEdge = -1
		l.leave()
	}

	if l.hooks.OnFrame != nil {
		l.hooks.OnFrame(hit)
	}
}

func (l *Loop) test() Hit {
	if l.blocked != nil && l.blocked() {
		return miss
	}
	if !l.hasPointer || !l.canvas.Contains(l.pointer) {
		return miss
	}

	local := l.pointer.Sub(l.canvas.Min)
	p := l.proj.ToModel(local)
	tol := l.opts.EdgeTolerance / max(l.proj.Scale(), 1e-3)
	return Test(l.scene, p, tol)
}

func (l *Loop) show(id graph.EdgeID) {
	s, ok := l.summary.EdgeSummary(id)
	if !ok {
		return
	}
	c := ContentFor(s)
	l.tooltip = Tooltip{
		Visible:  true,
		Edge:     id,
		Content:  c,
		Position: Place(l.pointer, c.Box(l.opts.CharWidth, l.opts.LineHeight), l.window, l.opts.Margin),
	}
	l.changed()
}

func (l *Loop) follow() {
	box := l.tooltip.Content.Box(l.opts.CharWidth, l.opts.LineHeight)
	pos := Place(l.pointer, box, l.window, l.opts.Margin)
	if pos != l.tooltip.Position {
		l.tooltip.Position = pos
		l.changed()
	}
}

// leave starts the trailing fade unless one is already running.
func (l *Loop) leave() {
	if !l.tooltip.Visible || l.tooltip.Fading {
		return
	}
	l.tooltip.Fading = true
	l.changed()
	l.fade = l.sched.AfterFunc(l.opts.FadeDuration, func() {
		l.fade = nil
		l.hideNow()
	})
}

func (l *Loop) hideNow() {
	if !l.tooltip.Visible && !l.tooltip.Fading {
		return
	}
	l.tooltip = Tooltip{Edge: -1}
	l.changed()
}

func (l *Loop) changed() {
	if l.hooks.OnChange != nil {
		l.hooks.OnChange(l.tooltip)
	}
}
