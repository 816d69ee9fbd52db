package health

import (
	"time"
)

// NewHealthChecker creates a new health checker. Uptime counts from here.
func NewHealthChecker() *HealthChecker {
	hc := &HealthChecker{started: time.Now(), now: time.Now}
	for i := range hc.probes {
		hc.probes[i] = make(map[string]CheckFunc)
	}
	return hc
}

// Register adds check under name for probe, replacing any check with the
// same name.
func (hc *HealthChecker) Register(probe Probe, name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.probes[probe][name] = check
}

func (hc *HealthChecker) RegisterCheck(name string, check CheckFunc) {
	hc.Register(ProbeHealth, name, check)
}

func (hc *HealthChecker) RegisterReadinessCheck(name string, check CheckFunc) {
	hc.Register(ProbeReady, name, check)
}

func (hc *HealthChecker) RegisterLivenessCheck(name string, check CheckFunc) {
	hc.Register(ProbeLive, name, check)
}

// Check runs the /healthz checks.
func (hc *HealthChecker) Check() Response { return hc.Run(ProbeHealth) }

// CheckReadiness runs the /readyz checks.
func (hc *HealthChecker) CheckReadiness() Response { return hc.Run(ProbeReady) }

// CheckLiveness runs the /livez checks.
func (hc *HealthChecker) CheckLiveness() Response { return hc.Run(ProbeLive) }

// Run executes every check of probe. The overall status is the worst one
// reported.
func (hc *HealthChecker) Run(probe Probe) Response {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	checks := hc.probes[probe]
	now := hc.now()
	response := Response{
		Status:    StatusHealthy,
		Timestamp: now,
		Checks:    make(map[string]Check, len(checks)),
		Uptime:    now.Sub(hc.started).Seconds(),
	}

	for name, fn := range checks {
		start := time.Now()
		check := fn()
		check.Duration = time.Since(start)
		check.LastChecked = start
		if check.Name == "" {
			check.Name = name
		}
		response.Checks[name] = check

		if rank(check.Status) > rank(response.Status) {
			response.Status = check.Status
		}
	}

	return response
}

func rank(s Status) int {
	switch s {
	case StatusDegraded:
		return 1
	case StatusUnhealthy:
		return 2
	default:
		return 0
	}
}
