package health

import (
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check represents a health check for a specific component
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ms"`
}

// CheckFunc is a function that performs a health check
type CheckFunc func() Check

// Probe selects which endpoint a check answers for.
type Probe int

const (
	ProbeHealth Probe = iota // /healthz
	ProbeReady               // /readyz
	ProbeLive                // /livez
)

// HealthChecker manages the checks behind /healthz, /readyz and /livez.
type HealthChecker struct {
	mu      sync.RWMutex
	probes  [3]map[string]CheckFunc
	started time.Time
	now     func() time.Time
}

// Response represents the overall health response
type Response struct {
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Uptime    float64          `json:"uptime_seconds"`
}

// LoadState is the part of the engine state the dataset check looks at.
type LoadState struct {
	Status string // idle, loading, ready or failed
	Nodes  int
	Edges  int
	Err    error
}
