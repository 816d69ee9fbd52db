// Package engine owns the interactive graph session. One goroutine (Run)
// applies every intent and timer callback in order, so the model, camera,
// selection and tooltip never see concurrent mutation. Renderers send
// intents and read immutable Snapshots.
package engine

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-netmap/pkg/config"
	"github.com/dd0wney/cluso-netmap/pkg/dataset"
	"github.com/dd0wney/cluso-netmap/pkg/filter"
	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
	"github.com/dd0wney/cluso-netmap/pkg/hittest"
	"github.com/dd0wney/cluso-netmap/pkg/interaction"
	"github.com/dd0wney/cluso-netmap/pkg/logging"
	"github.com/dd0wney/cluso-netmap/pkg/metrics"
	"github.com/dd0wney/cluso-netmap/pkg/pubsub"
	"github.com/dd0wney/cluso-netmap/pkg/schedule"
	"github.com/dd0wney/cluso-netmap/pkg/selection"
	"github.com/dd0wney/cluso-netmap/pkg/viewport"
	"github.com/dd0wney/cluso-netmap/pkg/visualization"
)

const queueSize = 256

// Engine is the graph interaction and viewport engine.
type Engine struct {
	cfg     *config.Config
	loader  BundleLoader
	source  string
	sched   schedule.Scheduler
	gate    *interaction.Gate
	metrics *metrics.Registry
	bus     *pubsub.PubSub[Snapshot]
	logger  logging.Logger
	rng     *rand.Rand
	session string

	queue   chan func()
	quit    chan struct{}
	stopped chan struct{}
	loaded  chan struct{}
	running atomic.Bool

	// Everything below is owned by the Run goroutine.
	timers  map[*pendingTimer]struct{}
	settled bool
	status  Status
	loadErr error
	mounted bool
	version uint64

	model   *graph.Model
	sim     *visualization.Simulation
	palette filter.Palette
	focus   filter.Result

	vp      *viewport.Controller
	sel     *selection.Machine
	loop    *hittest.Loop
	frames  *hittest.Handle
	details *graph.NodeDetails

	canvas geom.Rect
	window geom.Size
}

// New creates an engine. Call Run, then Mount.
func New(opts Options) (*Engine, error) {
	if opts.Config == nil {
		return nil, errors.New("engine: config is required")
	}
	if opts.Loader == nil {
		return nil, errors.New("engine: loader is required")
	}

	palette, err := filter.PaletteFromConfig(opts.Config.Encoding)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     opts.Config,
		loader:  opts.Loader,
		source:  opts.SourceName,
		gate:    opts.Gate,
		metrics: opts.Metrics,
		bus:     opts.Bus,
		logger:  opts.Logger,
		rng:     opts.Rand,
		session: uuid.NewString(),
		palette: palette,
		focus:   filter.Result{Focus: filter.All, FocusID: graph.None},
		queue:   make(chan func(), queueSize),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
		loaded:  make(chan struct{}),
		timers:  make(map[*pendingTimer]struct{}),
	}

	inner := opts.Scheduler
	if inner == nil {
		inner = schedule.Real{}
	}
	e.sched = queued{e: e, inner: inner}

	if e.source == "" {
		e.source = "custom"
	}
	if e.gate == nil {
		e.gate = interaction.NewGate()
	}
	if e.metrics == nil {
		e.metrics = metrics.NewRegistry()
	}
	if e.logger == nil {
		e.logger = logging.NewNopLogger()
	}
	e.logger = e.logger.With(logging.Component("engine"), logging.Session(e.session))
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6e65746d6170))
	}

	e.vp = viewport.New(viewport.OptionsFromConfig(e.cfg.Viewport, e.cfg.Physics), nil, e.sched, e.logger)
	e.sel = selection.New(e.cfg.Selection.SettleDelay, e.sched, panelListener{e})

	return e, nil
}

// Session identifies this engine in logs and snapshots.
func (e *Engine) Session() string { return e.session }

// Gate is the interaction gate the engine reads.
func (e *Engine) Gate() *interaction.Gate { return e.gate }

// Loaded is closed once loading has finished, successfully or not, or the
// engine was unmounted first.
func (e *Engine) Loaded() <-chan struct{} { return e.loaded }

// Run applies intents until ctx is canceled or the engine is unmounted.
// A canceled context tears the session down as Unmount would.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(e.stopped)

	for {
		select {
		case <-ctx.Done():
			e.teardown()
			return ctx.Err()
		case <-e.quit:
			return nil
		case fn := <-e.queue:
			fn()
		}
	}
}

// post queues fn without waiting for it.
func (e *Engine) post(fn func()) {
	select {
	case e.queue <- fn:
	case <-e.stopped:
	}
}

// call runs fn on the engine goroutine and waits for it.
func (e *Engine) call(fn func()) error {
	done := make(chan struct{})
	select {
	case e.queue <- func() { defer close(done); fn() }:
	case <-e.stopped:
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-e.stopped:
		return ErrStopped
	}
}

// Mount starts loading the dataset. Loading runs off the engine goroutine;
// its result is installed in order with other intents.
func (e *Engine) Mount(ctx context.Context) error {
	return e.call(func() {
		if e.mounted {
			return
		}
		e.mounted = true
		e.setStatus(StatusLoading, nil)

		go func() {
			start := time.Now()
			b, err := e.loader.Load(ctx)
			took := time.Since(start)
			e.post(func() { e.install(b, err, took) })
		}()
	})
}

// Unmount stops the frame loop, cancels every pending timer, removes the
// tooltip and the blocking overlay, and stops Run.
func (e *Engine) Unmount() error {
	err := e.call(e.teardown)
	if errors.Is(err, ErrStopped) {
		return nil
	}
	return err
}

func (e *Engine) teardown() {
	select {
	case <-e.quit:
		return
	default:
	}

	if e.frames != nil {
		e.frames.Stop()
		e.frames = nil
	}
	e.vp.Stop()
	e.sel.Reset()
	e.details = nil
	e.cancelTimers()
	e.markLoaded()
	if e.gate.Unblock() {
		e.logger.Debug("overlay removed on unmount")
	}
	e.mounted = false
	e.logger.Info("session unmounted")
	close(e.quit)
}

func (e *Engine) install(b *dataset.Bundle, loadErr error, took time.Duration) {
	if !e.mounted {
		return
	}
	defer e.markLoaded()

	err := loadErr
	if err == nil {
		err = e.build(b)
	}
	if err != nil {
		e.metrics.RecordLoad(e.source, took, err, 0, 0)
		e.logger.Error("cannot display graph", logging.Error(err), logging.Latency(took))
		e.setStatus(StatusFailed, err)
		return
	}

	e.metrics.RecordLoad(e.source, took, nil, e.model.NodeCount(), e.model.EdgeCount())
	e.logger.Info("graph ready",
		logging.Int("nodes", e.model.NodeCount()),
		logging.Int("edges", e.model.EdgeCount()),
		logging.Latency(took))
	e.setStatus(StatusReady, nil)
}

func (e *Engine) markLoaded() {
	if !e.settled {
		e.settled = true
		close(e.loaded)
	}
}

func (e *Engine) build(b *dataset.Bundle) error {
	enc, err := graph.NewEncoder(e.cfg.Encoding)
	if err != nil {
		return err
	}
	model, err := graph.Build(b, enc)
	if err != nil {
		return err
	}
	placement, err := visualization.NewPlacement(e.cfg.Physics, e.rng)
	if err != nil {
		return err
	}

	ids := model.AllNodes()
	sim := visualization.NewSimulation(ids, visualization.LinksOf(model), visualization.ParamsFromConfig(e.cfg.Physics), e.logger)
	sim.Initialize(model.SavedPositions(), placement)
	steps := sim.Stabilize(e.cfg.Physics.StabilizationIterations)
	e.metrics.RecordStabilization(steps)
	model.SetPositions(sim.Positions())

	e.model = model
	e.sim = sim
	e.focus = filter.Result{Focus: filter.All, FocusID: graph.None, Visible: ids}

	e.vp.SetLayout(sim)
	e.vp.FitToVisible(ids, e.cfg.Viewport.FitZoomOut)

	e.loop = hittest.NewLoop(model, model, e.vp, e.sched, hittest.OptionsFromConfig(e.cfg.Tooltip), hittest.Hooks{
		OnFrame:  e.onFrame,
		OnChange: e.onTooltip,
	})
	e.loop.SetBlocked(e.gate.Blocked)
	e.loop.SetCanvas(e.canvas)
	e.loop.SetWindow(e.window)
	e.frames = e.loop.Start()
	return nil
}

func (e *Engine) ready() bool {
	return e.status == StatusReady && e.model != nil
}

func (e *Engine) setStatus(s Status, err error) {
	e.status = s
	e.loadErr = err
	e.publish(pubsub.TopicStatus)
}

// onFrame runs after every hit-test tick.
func (e *Engine) onFrame(hittest.Hit) {
	e.metrics.RecordFrame()
	if e.sim != nil && e.sim.Step() {
		e.metrics.RecordPhysicsStep()
		e.model.SetPositions(e.sim.Positions())
		e.version++
	}
}

func (e *Engine) onTooltip(t hittest.Tooltip) {
	if t.Visible && !t.Fading {
		e.metrics.RecordTooltipShow()
	}
	e.publish(pubsub.TopicTooltip)
}

// panelListener applies selection side effects.
type panelListener struct{ e *Engine }

func (l panelListener) PanelShown(id graph.NodeID) {
	e := l.e
	if e.model == nil {
		return
	}
	e.metrics.RecordSelection(selection.Selecting.String(), selection.Selected.String())
	if d, ok := e.model.Details(id); ok {
		e.details = &d
		if d.MissingData {
			e.logger.Warn("attribute rows missing", logging.Label(d.Label))
		}
	}
	e.publish(pubsub.TopicSelection)
}

func (l panelListener) PanelHidden() {
	l.e.details = nil
	l.e.publish(pubsub.TopicSelection)
}

func (l panelListener) ShiftCamera(opening bool) {
	l.e.vp.ShiftForPanel(opening)
	l.e.publish(pubsub.TopicViewport)
}

// snapshot copies the current state. Engine goroutine only.
func (e *Engine) snapshot() Snapshot {
	s := Snapshot{
		Session:   e.session,
		Version:   e.version,
		Status:    e.status,
		LoadErr:   e.loadErr,
		Blocked:   e.gate.Blocked(),
		Filter:    e.focus.Focus,
		Focus:     e.focus.FocusID,
		Viewport:  e.vp.State(),
		Selection: e.sel.Snapshot(),
		Tooltip:   hittest.Tooltip{Edge: -1},
		Hover:     hittest.Hit{Node: graph.None, Edge: -1},
	}
	if e.details != nil {
		d := *e.details
		s.Details = &d
	}
	if e.model != nil {
		s.Nodes = e.model.Nodes()
		s.Edges = e.model.Edges()
		s.Options = e.model.FilterOptions()
	}
	if e.sim != nil {
		s.Physics = e.sim.Physics()
		s.Stable = e.sim.Stable()
	}
	if e.loop != nil {
		s.Tooltip = e.loop.Tooltip()
		s.Hover = e.loop.Hover()
	}
	return s
}

func (e *Engine) publish(topic pubsub.Topic) {
	e.version++
	if e.bus == nil {
		return
	}
	e.bus.Publish(topic, e.snapshot())
}
