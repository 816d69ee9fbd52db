package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initHitTestMetrics() {
	r.FramesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netmap_hittest_frames_total",
			Help: "Hit-test frames processed",
		},
	)

	r.TooltipShowsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netmap_tooltip_shows_total",
			Help: "Edge tooltips shown",
		},
	)
}
