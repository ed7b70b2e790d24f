package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSecurityMetrics() {
	r.AuthFailuresTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netcanvas_auth_failures_total",
			Help: "Total number of authentication failures",
		},
	)

	r.SecurityUnauthorizedAccessTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netcanvas_security_unauthorized_access_total",
			Help: "Requests rejected for missing or invalid credentials",
		},
	)
}
