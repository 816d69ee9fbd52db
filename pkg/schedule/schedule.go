// Package schedule defers callbacks. Real uses wall-clock timers; Manual
// is driven by tests.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Cancel stops a pending callback. Calling it after the callback ran, or
// more than once, does nothing.
type Cancel func()

// Scheduler runs fn once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Cancel
}

// Real schedules with time.AfterFunc. Callbacks run on their own goroutine.
type Real struct{}

func (Real) AfterFunc(d time.Duration, fn func()) Cancel {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Manual is a scheduler whose clock only moves on Advance. Callbacks run on
// the goroutine calling Advance, in due order.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*entry
}

type entry struct {
	at       time.Duration
	seq      int
	fn       func()
	canceled bool
}

// NewManual returns a manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	e := &entry{at: m.now + d, seq: m.seq, fn: fn}
	m.pending = append(m.pending, e)

	return func() {
		m.mu.Lock()
		e.canceled = true
		m.mu.Unlock()
	}
}

// Advance moves the clock forward by d, running every callback that
// becomes due, including ones scheduled by callbacks along the way.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.popDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		m.mu.Unlock()

		next.fn()
	}
}

func (m *Manual) popDue(target time.Duration) *entry {
	live := m.pending[:0]
	for _, e := range m.pending {
		if !e.canceled {
			live = append(live, e)
		}
	}
	m.pending = live

	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].at != m.pending[j].at {
			return m.pending[i].at < m.pending[j].at
		}
		return m.pending[i].seq < m.pending[j].seq
	})

	if len(m.pending) == 0 || m.pending[0].at > target {
		return nil
	}
	e := m.pending[0]
	m.pending = m.pending[1:]
	return e
}

// Pending counts callbacks that are neither run nor canceled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.pending {
		if !e.canceled {
			n++
		}
	}
	return n
}

// Now is the elapsed manual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}
