package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Load Metrics
	LoadDuration      *prometheus.HistogramVec
	LoadFailuresTotal *prometheus.CounterVec
	GraphNodes        prometheus.Gauge
	GraphEdges        prometheus.Gauge

	// Interaction Metrics
	SelectionTransitionsTotal *prometheus.CounterVec
	FiltersTotal              *prometheus.CounterVec
	ZoomClampsTotal           prometheus.Counter
	PanClampsTotal            prometheus.Counter
	ResetsTotal               prometheus.Counter
	RandomizesTotal           prometheus.Counter
	IntentsIgnoredTotal       *prometheus.CounterVec

	// Layout Metrics
	StabilizationSteps prometheus.Histogram
	PhysicsStepsTotal  prometheus.Counter

	// Hit-test Metrics
	FramesTotal       prometheus.Counter
	TooltipShowsTotal prometheus.Counter

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initLoadMetrics()
	r.initInteractionMetrics()
	r.initLayoutMetrics()
	r.initHitTestMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
