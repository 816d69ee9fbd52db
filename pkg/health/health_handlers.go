package health

import (
	"encoding/json"
	"net/http"
)

// HTTPHandler serves the full check set. Degraded still answers 200.
func (hc *HealthChecker) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, hc.Check(), false)
	}
}

// ReadinessHandler answers 200 only once every readiness check is healthy.
func (hc *HealthChecker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, hc.CheckReadiness(), true)
	}
}

// LivenessHandler returns an HTTP handler for liveness checks
func (hc *HealthChecker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, hc.CheckLiveness(), true)
	}
}

// Mount adds the three endpoints to mux.
func (hc *HealthChecker) Mount(mux *http.ServeMux) {
	mux.Handle("/healthz", hc.HTTPHandler())
	mux.Handle("/readyz", hc.ReadinessHandler())
	mux.Handle("/livez", hc.LivenessHandler())
}

func writeResponse(w http.ResponseWriter, response Response, strict bool) {
	w.Header().Set("Content-Type", "application/json")

	code := http.StatusOK
	switch {
	case response.Status == StatusUnhealthy:
		code = http.StatusServiceUnavailable
	case strict && response.Status != StatusHealthy:
		code = http.StatusServiceUnavailable
	}
	w.WriteHeader(code)

	json.NewEncoder(w).Encode(response)
}
