package health

import (
	"context"
	"runtime"
)

// SimpleCheck returns a check that always reports healthy
func SimpleCheck(name string) CheckFunc {
	return func(context.Context) Check {
		return Check{Name: name, Status: StatusHealthy}
	}
}

// DatabaseCheck reports the NetBox database as unhealthy when ping fails
func DatabaseCheck(ping func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{
			Name: "database",
		}

		if err := ping(ctx); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		} else {
			check.Status = StatusHealthy
			check.Message = "Connected"
		}

		return check
	}
}

// SchemaCheck reports the detected cable termination layout. An uninspected
// layout on a live database is degraded: every resolver variant is tried.
func SchemaCheck(shape func() string, live bool) CheckFunc {
	return func(context.Context) Check {
		s := shape()
		check := Check{
			Name:    "schema",
			Status:  StatusHealthy,
			Details: map[string]any{"shape": s, "live": live},
		}
		if live && s == "unknown" {
			check.Status = StatusDegraded
			check.Message = "Cable termination layout not recognized"
		}
		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck() CheckFunc {
	return memoryCheck(func() (uint64, uint64) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return m.Alloc, m.Sys
	})
}

func memoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func(context.Context) Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		if sys > 0 && float64(alloc)/float64(sys)*100 > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}
