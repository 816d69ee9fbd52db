package metrics

import (
	"errors"
	"runtime"
	"time"

	"github.com/dd0wney/cluso-netmap/pkg/dataset"
)

// RecordLoad records a dataset load attempt
func (r *Registry) RecordLoad(source string, duration time.Duration, err error, nodes, edges int) {
	status := "success"
	if err != nil {
		status = "error"
		op := "unknown"
		var le *dataset.LoadError
		if errors.As(err, &le) {
			op = le.Op
		}
		r.LoadFailuresTotal.WithLabelValues(op).Inc()
	} else {
		r.GraphNodes.Set(float64(nodes))
		r.GraphEdges.Set(float64(edges))
	}
	r.LoadDuration.WithLabelValues(source, status).Observe(duration.Seconds())
}

// RecordSelection records a selection state change
func (r *Registry) RecordSelection(from, to string) {
	r.SelectionTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordFilter records a filter change; kind is "all", "focus" or "unknown"
func (r *Registry) RecordFilter(kind string) {
	r.FiltersTotal.WithLabelValues(kind).Inc()
}

func (r *Registry) RecordZoomClamp() { r.ZoomClampsTotal.Inc() }
func (r *Registry) RecordPanClamp()  { r.PanClampsTotal.Inc() }
func (r *Registry) RecordReset()     { r.ResetsTotal.Inc() }

// RecordRandomize records a randomize with its stabilization pass
func (r *Registry) RecordRandomize(steps int) {
	r.RandomizesTotal.Inc()
	r.StabilizationSteps.Observe(float64(steps))
}

// RecordStabilization records a stabilization pass outside randomize
func (r *Registry) RecordStabilization(steps int) {
	r.StabilizationSteps.Observe(float64(steps))
}

func (r *Registry) RecordPhysicsStep() { r.PhysicsStepsTotal.Inc() }
func (r *Registry) RecordFrame()       { r.FramesTotal.Inc() }
func (r *Registry) RecordTooltipShow() { r.TooltipShowsTotal.Inc() }

// RecordIgnored records an intent dropped for reason ("blocked", "not_ready", "failed")
func (r *Registry) RecordIgnored(reason string) {
	r.IntentsIgnoredTotal.WithLabelValues(reason).Inc()
}

// UpdateSystemMetrics refreshes the runtime gauges
func (r *Registry) UpdateSystemMetrics(start time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(start).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}
