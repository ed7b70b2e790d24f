package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// namespace prefixes every metric name
const namespace = "netcanvas"

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Topology Metrics
	ExtractionsTotal    *prometheus.CounterVec
	ExtractionDuration  *prometheus.HistogramVec
	CablesResolvedTotal *prometheus.CounterVec
	TopologyDevices     *prometheus.GaugeVec
	TopologyConnections *prometheus.GaugeVec

	// Store Metrics
	StoreQueriesTotal  *prometheus.CounterVec
	StoreQueryDuration *prometheus.HistogramVec
	CanvasOperations   *prometheus.CounterVec
	SnapshotBytes      *prometheus.HistogramVec

	// Security Metrics
	AuthFailuresTotal               prometheus.Counter
	SecurityUnauthorizedAccessTotal prometheus.Counter

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
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

	r.initHTTPMetrics()
	r.initTopologyMetrics()
	r.initStoreMetrics()
	r.initSecurityMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
