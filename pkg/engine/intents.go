package engine

import (
	"fmt"
	"io"

	"github.com/dd0wney/cluso-netmap/pkg/filter"
	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
	"github.com/dd0wney/cluso-netmap/pkg/hittest"
	"github.com/dd0wney/cluso-netmap/pkg/logging"
	"github.com/dd0wney/cluso-netmap/pkg/pubsub"
	"github.com/dd0wney/cluso-netmap/pkg/selection"
)

// Pointer positions passed to intents are window pixels unless noted.

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() (Snapshot, error) {
	var s Snapshot
	err := e.call(func() { s = e.snapshot() })
	return s, err
}

// Resize records the canvas rectangle inside the window and the window size.
func (e *Engine) Resize(canvas geom.Rect, window geom.Size) error {
	return e.call(func() {
		e.canvas = canvas
		e.window = window
		e.vp.Resize(canvas.Size(), window)
		if e.loop != nil {
			e.loop.SetCanvas(canvas)
			e.loop.SetWindow(window)
		}
		e.publish(pubsub.TopicViewport)
	})
}

// SetPanelWidth overrides the detail panel width in pixels. Zero goes back
// to the configured fraction of the canvas.
func (e *Engine) SetPanelWidth(px float64) error {
	return e.call(func() {
		e.vp.SetPanelWidth(px)
		e.publish(pubsub.TopicViewport)
	})
}

// PointerMove feeds the hit-test loop. It is picked up on the next frame.
func (e *Engine) PointerMove(p geom.Point) error {
	return e.call(func() {
		if e.loop == nil {
			return
		}
		e.loop.MovePointer(p)
	})
}

// PointerLeave tells the loop the pointer left the window.
func (e *Engine) PointerLeave() error {
	return e.call(func() {
		if e.loop != nil {
			e.loop.LeaveWindow()
		}
	})
}

// Click selects the node under p, or deselects on empty canvas.
func (e *Engine) Click(p geom.Point) error {
	return e.call(func() {
		if !e.accept("click") {
			return
		}
		e.clickNode(e.nodeAt(p), false)
	})
}

// DoubleClick behaves like Click on a node and is ignored on empty canvas.
func (e *Engine) DoubleClick(p geom.Point) error {
	return e.call(func() {
		if !e.accept("double_click") {
			return
		}
		e.clickNode(e.nodeAt(p), true)
	})
}

// ClickNode is Click for renderers that resolve the node themselves.
// graph.None means empty canvas. A node that no longer exists or is hidden
// counts as a click on empty canvas.
func (e *Engine) ClickNode(id graph.NodeID) error {
	return e.call(func() {
		if !e.accept("click") {
			return
		}
		e.clickNode(id, false)
	})
}

// ClosePanel is the detail panel's close button.
func (e *Engine) ClosePanel() error {
	return e.call(func() {
		e.transition(e.sel.Close)
	})
}

// Zoom multiplies the scale by factor around anchor. It reports whether the
// request was clamped into range.
func (e *Engine) Zoom(factor float64, anchor geom.Point) (bool, error) {
	var clamped bool
	err := e.call(func() {
		if !e.accept("zoom") {
			return
		}
		clamped = e.vp.Zoom(factor, anchor.Sub(e.canvas.Min))
		if clamped {
			e.metrics.RecordZoomClamp()
			e.logger.Debug("zoom clamped", logging.Scale(e.vp.Scale()))
		}
		e.publish(pubsub.TopicViewport)
	})
	return clamped, err
}

// Drag pans the camera by a pixel delta.
func (e *Engine) Drag(dx, dy float64) error {
	return e.call(func() {
		if !e.accept("drag") {
			return
		}
		e.vp.Pan(dx, dy)
		e.publish(pubsub.TopicViewport)
	})
}

// DragEnd pulls the camera back inside the pan limit.
func (e *Engine) DragEnd() error {
	return e.call(func() {
		if !e.accept("drag_end") {
			return
		}
		if e.vp.ClampPan() {
			e.metrics.RecordPanClamp()
		}
		e.publish(pubsub.TopicViewport)
	})
}

// Filter narrows the graph to focus and its neighbours, or shows every node
// for filter.All. The camera refits to the visible nodes and a selected node
// that became hidden is deselected.
func (e *Engine) Filter(focus string) error {
	var ferr error
	err := e.call(func() {
		if !e.ready() {
			e.metrics.RecordIgnored("not_ready")
			ferr = ErrNotReady
			return
		}

		res, err := filter.Apply(e.model, focus, e.palette)
		if err != nil {
			e.metrics.RecordFilter("unknown")
			e.logger.Warn("filter rejected", logging.Label(focus), logging.Error(err))
			ferr = err
			return
		}

		kind := "focus"
		if res.FocusID == graph.None {
			kind = "all"
		}
		e.metrics.RecordFilter(kind)
		e.focus = res
		e.sim.SetActive(res.Visible)
		e.vp.FitToVisible(res.Visible, e.cfg.Viewport.FilterZoomOut)

		if sel := e.sel.Selected(); sel != graph.None && !e.model.IsVisible(sel) {
			e.logger.Debug("selected node filtered out", logging.NodeID(int(sel)))
			e.transition(func() { e.sel.Click(graph.None) })
		}

		e.logger.Info("filter applied", logging.Label(res.Focus), logging.Count(len(res.Visible)))
		e.publish(pubsub.TopicFilter)
	})
	if err != nil {
		return err
	}
	return ferr
}

// Reset restores the saved layout when there is one, refits the visible
// nodes and keeps the current selection.
func (e *Engine) Reset() error {
	return e.call(func() {
		if !e.ready() {
			e.metrics.RecordIgnored("not_ready")
			return
		}
		e.vp.Reset(e.model.SavedPositions(), e.visible())
		e.model.SetPositions(e.sim.Positions())
		e.metrics.RecordReset()
		e.logger.Info("layout reset", logging.Bool("saved", e.model.SavedPositions() != nil))
		e.publish(pubsub.TopicViewport)
	})
}

// Randomize scatters every node, refits and runs a bounded stabilization.
func (e *Engine) Randomize() error {
	return e.call(func() {
		if !e.ready() {
			e.metrics.RecordIgnored("not_ready")
			return
		}
		steps := e.vp.Randomize(e.rng, e.model.AllNodes())
		e.model.SetPositions(e.sim.Positions())
		e.metrics.RecordRandomize(steps)
		e.logger.Info("layout randomized", logging.Int("steps", steps))
		e.publish(pubsub.TopicViewport)
	})
}

// Block raises the modal overlay: pointer intents are ignored and the
// tooltip is removed until Unblock.
func (e *Engine) Block() error {
	return e.call(func() {
		if !e.gate.Block() {
			return
		}
		if e.loop != nil {
			e.loop.Hide()
		}
		e.publish(pubsub.TopicStatus)
	})
}

// Unblock removes the modal overlay.
func (e *Engine) Unblock() error {
	return e.call(func() {
		if e.gate.Unblock() {
			e.publish(pubsub.TopicStatus)
		}
	})
}

// ExportLayout writes the current positions in the saved-positions format.
func (e *Engine) ExportLayout(w io.Writer) error {
	var werr error
	err := e.call(func() {
		if !e.ready() {
			werr = ErrNotReady
			return
		}
		werr = e.sim.Export(w)
	})
	if err != nil {
		return err
	}
	if werr != nil {
		return fmt.Errorf("export layout: %w", werr)
	}
	return nil
}

// accept reports whether a pointer intent may proceed.
func (e *Engine) accept(op string) bool {
	switch {
	case e.gate.Blocked():
		e.metrics.RecordIgnored("blocked")
		e.logger.Debug("intent ignored while blocked", logging.Operation(op))
		return false
	case !e.ready():
		e.metrics.RecordIgnored("not_ready")
		return false
	}
	return true
}

// nodeAt resolves a window pixel to the topmost visible node.
func (e *Engine) nodeAt(p geom.Point) graph.NodeID {
	if !e.canvas.Contains(p) {
		return graph.None
	}
	m := e.vp.ToModel(p.Sub(e.canvas.Min))
	if id, ok := hittest.NodeAt(e.model.Nodes(), m); ok {
		return id
	}
	return graph.None
}

func (e *Engine) clickNode(id graph.NodeID, double bool) {
	if id != graph.None && !e.model.IsVisible(id) {
		e.logger.Debug("stale selection treated as deselect", logging.NodeID(int(id)))
		id = graph.None
	}
	if double {
		e.transition(func() { e.sel.DoubleClick(id) })
		return
	}
	e.transition(func() { e.sel.Click(id) })
}

// transition applies a selection change and records it.
func (e *Engine) transition(fn func()) {
	from := e.sel.State()
	fn()
	to := e.sel.State()
	if from != to {
		e.metrics.RecordSelection(from.String(), to.String())
	}
	e.publish(pubsub.TopicSelection)
}

func (e *Engine) visible() []graph.NodeID {
	if e.focus.Visible != nil {
		return e.focus.Visible
	}
	return e.model.VisibleNodes()
}

var _ selection.Listener = panelListener{}
