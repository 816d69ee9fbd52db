package engine

import (
	"time"

	"github.com/dd0wney/cluso-netmap/pkg/schedule"
)

// queued wraps a scheduler so callbacks run on the engine goroutine. The
// engine tracks every pending timer so unmount can cancel them all.
type queued struct {
	e     *Engine
	inner schedule.Scheduler
}

type pendingTimer struct {
	canceled bool
	stop     schedule.Cancel
}

func (q queued) AfterFunc(d time.Duration, fn func()) schedule.Cancel {
	t := &pendingTimer{}
	q.e.timers[t] = struct{}{}

	t.stop = q.inner.AfterFunc(d, func() {
		q.e.post(func() {
			if t.canceled {
				return
			}
			delete(q.e.timers, t)
			fn()
		})
	})

	return func() {
		if t.canceled {
			return
		}
		t.canceled = true
		t.stop()
		delete(q.e.timers, t)
	}
}

// cancelTimers stops every pending callback.
func (e *Engine) cancelTimers() {
	for t := range e.timers {
		t.canceled = true
		t.stop()
	}
	clear(e.timers)
}
