// Package selection tracks the selected node and the detail panel.
//
// Swapping the panel from one node to another always hides it first and
// reopens it after a settle delay, so outgoing content never flashes.
package selection

import (
	"fmt"
	"time"

	"github.com/dd0wney/cluso-netmap/pkg/graph"
	"github.com/dd0wney/cluso-netmap/pkg/schedule"
)

// State of the machine.
type State int

const (
	Idle State = iota
	Selecting
	Selected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Selected:
		return "selected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Listener receives panel and camera side effects.
type Listener interface {
	PanelShown(id graph.NodeID)
	PanelHidden()
	// ShiftCamera moves the camera for the panel. It is issued once when
	// the panel opens from Idle and reversed when the machine returns to Idle.
	ShiftCamera(opening bool)
}

// Snapshot is a read-only copy of the machine.
type Snapshot struct {
	State        State
	Selected     graph.NodeID
	PanelVisible bool
	Shifted      bool
}

// Machine is the selection state machine. It is not safe for concurrent
// use; scheduler callbacks must run on the owner's goroutine.
type Machine struct {
	state        State
	selected     graph.NodeID
	panelVisible bool
	shifted      bool

	settle   time.Duration
	sched    schedule.Scheduler
	listener Listener
	pending  schedule.Cancel
}

// New creates an idle machine.
func New(settle time.Duration, sched schedule.Scheduler, listener Listener) *Machine {
	return &Machine{
		selected: graph.None,
		settle:   settle,
		sched:    sched,
		listener: listener,
	}
}

// Click handles a click on id, or on empty canvas when id is graph.None.
func (m *Machine) Click(id graph.NodeID) {
	if id == graph.None {
		m.toIdle()
		return
	}

	switch m.state {
	case Idle:
		m.beginSelecting(id)
	case Selecting:
		if id == m.selected {
			m.toIdle()
			return
		}
		m.beginSelecting(id)
	case Selected:
		if id == m.selected {
			m.toIdle()
			return
		}
		m.hidePanel()
		m.beginSelecting(id)
	}
}

// DoubleClick behaves like Click on a node and does nothing on empty canvas.
func (m *Machine) DoubleClick(id graph.NodeID) {
	if id == graph.None {
		return
	}
	m.Click(id)
}

// Close is the panel's close button.
func (m *Machine) Close() {
	m.toIdle()
}

// Reset drops all state without notifying the listener.
func (m *Machine) Reset() {
	m.cancelPending()
	m.state = Idle
	m.selected = graph.None
	m.panelVisible = false
	m.shifted = false
}

func (m *Machine) State() State { return m.state }

// Selected returns the node being shown or about to be shown.
func (m *Machine) Selected() graph.NodeID { return m.selected }

func (m *Machine) PanelVisible() bool { return m.panelVisible }

func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		State:        m.state,
		Selected:     m.selected,
		PanelVisible: m.panelVisible,
		Shifted:      m.shifted,
	}
}

func (m *Machine) beginSelecting(id graph.NodeID) {
	m.cancelPending()
	m.state = Selecting
	m.selected = id
	m.pending = m.sched.AfterFunc(m.settle, func() { m.settled(id) })
}

func (m *Machine) settled(id graph.NodeID) {
	if m.state != Selecting || m.selected != id {
		return
	}
	m.pending = nil
	m.state = Selected
	m.panelVisible = true
	m.listener.PanelShown(id)

	if !m.shifted {
		m.shifted = true
		m.listener.ShiftCamera(true)
	}
}

func (m *Machine) hidePanel() {
	if !m.panelVisible {
		return
	}
	m.panelVisible = false
	m.listener.PanelHidden()
}

func (m *Machine) toIdle() {
	m.cancelPending()
	m.hidePanel()
	m.state = Idle
	m.selected = graph.None

	if m.shifted {
		m.shifted = false
		m.listener.ShiftCamera(false)
	}
}

func (m *Machine) cancelPending() {
	if m.pending != nil {
		m.pending()
		m.pending = nil
	}
}
