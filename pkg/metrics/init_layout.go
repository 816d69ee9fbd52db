package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLayoutMetrics() {
	r.StabilizationSteps = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netmap_stabilization_steps",
			Help:    "Solver steps run per stabilization pass",
			Buckets: []float64{1, 10, 50, 100, 200, 500},
		},
	)

	r.PhysicsStepsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netmap_physics_steps_total",
			Help: "Solver steps run by the frame loop",
		},
	)
}
