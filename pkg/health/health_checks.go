package health

import (
	"fmt"
	"runtime"
)

// DatasetCheck reports the load state of the graph. Loading is degraded,
// a failed load is unhealthy.
func DatasetCheck(get func() LoadState) CheckFunc {
	return func() Check {
		st := get()
		check := Check{
			Name: "dataset",
			Details: map[string]any{
				"status": st.Status,
				"nodes":  st.Nodes,
				"edges":  st.Edges,
			},
		}

		switch st.Status {
		case "ready":
			check.Status = StatusHealthy
			check.Message = fmt.Sprintf("%d topics loaded", st.Nodes)
		case "failed":
			check.Status = StatusUnhealthy
			check.Message = "Load failed"
			if st.Err != nil {
				check.Message = st.Err.Error()
			}
		default:
			check.Status = StatusDegraded
			check.Message = "Not loaded yet"
		}

		return check
	}
}

// EngineCheck reports whether the engine loop still answers.
func EngineCheck(ping func() error) CheckFunc {
	return func() Check {
		check := Check{Name: "engine"}

		if err := ping(); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		} else {
			check.Status = StatusHealthy
			check.Message = "Running"
		}

		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		var usagePercent float64
		if sys > 0 {
			usagePercent = float64(alloc) / float64(sys) * 100
		}

		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}

// RuntimeMemory reads heap and total memory from the Go runtime.
func RuntimeMemory() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}
