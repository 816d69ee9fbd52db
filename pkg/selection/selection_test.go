package selection

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dd0wney/cluso-netmap/pkg/graph"
	"github.com/dd0wney/cluso-netmap/pkg/schedule"
)

const settle = 50 * time.Millisecond

type recorder struct {
	events []string
}

func (r *recorder) PanelShown(id graph.NodeID) { r.events = append(r.events, fmt.Sprintf("show:%d", id)) }
func (r *recorder) PanelHidden()               { r.events = append(r.events, "hide") }
func (r *recorder) ShiftCamera(opening bool) {
	if opening {
		r.events = append(r.events, "shift:open")
	} else {
		r.events = append(r.events, "shift:close")
	}
}

func (r *recorder) take() string {
	s := strings.Join(r.events, ",")
	r.events = nil
	return s
}

func newMachine() (*Machine, *schedule.Manual, *recorder) {
	clock := schedule.NewManual()
	rec := &recorder{}
	return New(settle, clock, rec), clock, rec
}

func TestSelectThenToggleOff(t *testing.T) {
	m, clock, rec := newMachine()

	m.Click(1)
	if m.State() != Selecting || m.PanelVisible() {
		t.Fatalf("after click: %+v", m.Snapshot())
	}
	if got := rec.take(); got != "" {
		t.Errorf("no effects before settle, got %s", got)
	}

	clock.Advance(settle)
	if m.State() != Selected || !m.PanelVisible() || m.Selected() != 1 {
		t.Fatalf("after settle: %+v", m.Snapshot())
	}
	if got := rec.take(); got != "show:1,shift:open" {
		t.Errorf("effects = %s", got)
	}

	m.Click(1)
	if m.State() != Idle || m.Selected() != graph.None || m.PanelVisible() {
		t.Fatalf("after toggle: %+v", m.Snapshot())
	}
	if got := rec.take(); got != "hide,shift:close" {
		t.Errorf("effects = %s", got)
	}
}

func TestSwapHidesBeforeShowing(t *testing.T) {
	m, clock, rec := newMachine()
	m.Click(1)
	clock.Advance(settle)
	rec.take()

	m.Click(2)
	if m.State() != Selecting || m.PanelVisible() || m.Selected() != 2 {
		t.Fatalf("during swap: %+v", m.Snapshot())
	}
	if got := rec.take(); got != "hide" {
		t.Errorf("effects = %s", got)
	}

	clock.Advance(settle - time.Millisecond)
	if m.PanelVisible() {
		t.Fatal("panel reopened before settle delay")
	}

	clock.Advance(time.Millisecond)
	// no second shift
	if got := rec.take(); got != "show:2" {
		t.Errorf("effects = %s", got)
	}
	if !m.Snapshot().Shifted {
		t.Error("camera shift should persist across a swap")
	}
}

func TestClickEmptyCanvas(t *testing.T) {
	m, clock, rec := newMachine()

	m.Click(graph.None)
	if got := rec.take(); got != "" || m.State() != Idle {
		t.Errorf("idle click on empty: %s %v", got, m.State())
	}

	m.Click(3)
	clock.Advance(settle)
	rec.take()

	m.Click(graph.None)
	if got := rec.take(); got != "hide,shift:close" || m.State() != Idle {
		t.Errorf("effects = %s state=%v", got, m.State())
	}
}

func TestDoubleClick(t *testing.T) {
	m, clock, rec := newMachine()
	m.DoubleClick(4)
	clock.Advance(settle)
	if m.State() != Selected || m.Selected() != 4 {
		t.Fatalf("double click on node: %+v", m.Snapshot())
	}
	rec.take()

	m.DoubleClick(graph.None)
	if m.State() != Selected || rec.take() != "" {
		t.Error("double click on empty canvas must not deselect")
	}
}

func TestClickDuringSettle(t *testing.T) {
	t.Run("same node cancels", func(t *testing.T) {
		m, clock, rec := newMachine()
		m.Click(1)
		m.Click(1)
		clock.Advance(time.Second)
		if m.State() != Idle || rec.take() != "" {
			t.Errorf("state=%v", m.State())
		}
		if clock.Pending() != 0 {
			t.Error("pending settle timer left behind")
		}
	})

	t.Run("other node retargets", func(t *testing.T) {
		m, clock, rec := newMachine()
		m.Click(1)
		clock.Advance(settle / 2)
		m.Click(2)
		clock.Advance(settle / 2)
		if m.State() != Selecting {
			t.Fatalf("retarget must restart the delay, state=%v", m.State())
		}
		clock.Advance(settle / 2)
		if got := rec.take(); got != "show:2,shift:open" {
			t.Errorf("effects = %s", got)
		}
	})
}

func TestClose(t *testing.T) {
	m, clock, rec := newMachine()
	m.Click(1)
	clock.Advance(settle)
	rec.take()

	m.Close()
	if m.State() != Idle || rec.take() != "hide,shift:close" {
		t.Errorf("close: %+v", m.Snapshot())
	}
}

func TestResetIsSilent(t *testing.T) {
	m, clock, rec := newMachine()
	m.Click(1)
	clock.Advance(settle)
	m.Click(2)
	rec.take()

	m.Reset()
	clock.Advance(time.Second)
	if m.State() != Idle || m.Selected() != graph.None || rec.take() != "" {
		t.Errorf("reset: %+v", m.Snapshot())
	}
}

func TestPanelVisibleImpliesSelection(t *testing.T) {
	m, clock, _ := newMachine()
	clicks := []graph.NodeID{1, 1, 2, graph.None, 3, 4, 4, 2, graph.None, graph.None, 5}

	for _, id := range clicks {
		m.Click(id)
		check(t, m)
		clock.Advance(settle / 3)
		check(t, m)
		clock.Advance(settle)
		check(t, m)
	}
}

func check(t *testing.T, m *Machine) {
	t.Helper()
	s := m.Snapshot()
	if s.PanelVisible && s.Selected == graph.None {
		t.Fatalf("panel visible without selection: %+v", s)
	}
	if s.State == Idle && s.Shifted {
		t.Fatalf("idle with camera shifted: %+v", s)
	}
}
