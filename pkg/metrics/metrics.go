package metrics

import (
	"runtime"
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordExtraction records one topology extraction. It satisfies
// topology.Recorder together with RecordCableOutcome.
func (r *Registry) RecordExtraction(preset, status string, duration time.Duration, devices, connections int) {
	r.ExtractionsTotal.WithLabelValues(preset, status).Inc()
	r.ExtractionDuration.WithLabelValues(preset).Observe(duration.Seconds())
	if status != "error" {
		r.TopologyDevices.WithLabelValues(preset).Set(float64(devices))
		r.TopologyConnections.WithLabelValues(preset).Set(float64(connections))
	}
}

// RecordCableOutcome adds n cables to an outcome's counter
func (r *Registry) RecordCableOutcome(outcome string, n int) {
	r.CablesResolvedTotal.WithLabelValues(outcome).Add(float64(n))
}

// RecordStoreQuery records a NetBox store query
func (r *Registry) RecordStoreQuery(operation, status string, duration time.Duration) {
	r.StoreQueriesTotal.WithLabelValues(operation, status).Inc()
	r.StoreQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCanvasOperation counts a saved canvas operation
func (r *Registry) RecordCanvasOperation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.CanvasOperations.WithLabelValues(operation, status).Inc()
}

// RecordSnapshot observes a snapshot's compressed size
func (r *Registry) RecordSnapshot(direction string, size int64) {
	r.SnapshotBytes.WithLabelValues(direction).Observe(float64(size))
}

// UpdateSystemMetrics refreshes uptime and Go runtime gauges
func (r *Registry) UpdateSystemMetrics(start time.Time) {
	r.UptimeSeconds.Set(time.Since(start).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}

// RecordResponseSize observes an HTTP response body size
func (r *Registry) RecordResponseSize(method, path string, size float64) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(size)
}

// IncHTTPRequestsInFlight marks a request as started
func (r *Registry) IncHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight marks a request as finished
func (r *Registry) DecHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Dec()
}

// RecordAuthFailure counts a rejected bearer token. missing is true when no
// credentials were presented at all.
func (r *Registry) RecordAuthFailure(missing bool) {
	if missing {
		r.SecurityUnauthorizedAccessTotal.Inc()
		return
	}
	r.AuthFailuresTotal.Inc()
}
