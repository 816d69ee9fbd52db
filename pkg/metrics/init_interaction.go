package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initInteractionMetrics() {
	r.SelectionTransitionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netmap_selection_transitions_total",
			Help: "Selection state machine transitions",
		},
		[]string{"from", "to"},
	)

	r.FiltersTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netmap_filters_total",
			Help: "Filter changes by outcome",
		},
		[]string{"kind"},
	)

	r.ZoomClampsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netmap_zoom_clamps_total",
			Help: "Zoom requests clamped into the scale range",
		},
	)

	r.PanClampsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netmap_pan_clamps_total",
			Help: "Drags pulled back inside the pan limit",
		},
	)

	r.ResetsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netmap_resets_total",
			Help: "Layout resets",
		},
	)

	r.RandomizesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netmap_randomizes_total",
			Help: "Layout randomizations",
		},
	)

	r.IntentsIgnoredTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netmap_intents_ignored_total",
			Help: "Intents dropped before reaching the engine state",
		},
		[]string{"reason"},
	)
}
