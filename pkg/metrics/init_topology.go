package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initTopologyMetrics() {
	r.ExtractionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "topology_extractions_total",
			Help:      "Topology extractions by preset and result (ok, degraded, error)",
		},
		[]string{"preset", "status"},
	)

	r.ExtractionDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "topology_extraction_duration_seconds",
			Help:      "Topology extraction latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"preset"},
	)

	r.CablesResolvedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cables_resolved_total",
			Help:      "Cables processed by resolution outcome",
		},
		[]string{"outcome"},
	)

	r.TopologyDevices = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "topology_devices",
			Help:      "Devices in the most recent extraction",
		},
		[]string{"preset"},
	)

	r.TopologyConnections = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "topology_connections",
			Help:      "Connections in the most recent extraction",
		},
		[]string{"preset"},
	)
}
