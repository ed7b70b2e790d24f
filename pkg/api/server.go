// Package api serves the network canvas over HTTP: the topology JSON API,
// the HTML dashboards, saved canvases, GraphQL, health and metrics.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
)

// Handler returns the server's routes wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("/health", s.healthChecker.HTTPHandler())
	mux.HandleFunc("/health/live", s.healthChecker.LivenessHandler())
	mux.HandleFunc("/health/ready", s.healthChecker.ReadinessHandler())
	mux.Handle("/metrics", s.handleMetrics())

	// Dashboards
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/dashboard/enhanced", s.handleEnhancedDashboard)

	// JSON API and GraphQL, behind bearer auth when enabled
	api := http.NewServeMux()
	api.HandleFunc("/api/topology", s.handleTopology)
	api.HandleFunc("/api/topology/dashboard", s.handleDashboardTopology)
	api.HandleFunc("/api/debug", s.handleDebug)
	api.HandleFunc("/api/canvases", s.handleCanvases)
	api.HandleFunc("/api/canvases/", s.handleCanvas) // /api/canvases/{id}
	api.Handle("/graphql", s.graphqlHandler)
	mux.Handle("/api/", s.authMiddleware(api))
	mux.Handle("/graphql", s.authMiddleware(api))

	return s.requestIDMiddleware(
		s.loggingMiddleware(
			s.panicRecoveryMiddleware(
				s.securityHeadersMiddleware(
					s.corsMiddleware(
						s.metricsMiddleware(
							s.rateLimitMiddleware(
								s.bodySizeLimitMiddleware(mux, int64(s.config.MaxBodyBytes)))))))))
}

// Start listens on the configured address and serves until Shutdown.
// It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown
func (s *Server) Serve(ln net.Listener) error {
	// Create HTTP server with timeouts for production security
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.Info("netcanvas server listening",
		logging.String("addr", ln.Addr().String()),
		logging.String("version", s.version),
		logging.Bool("auth", s.tokenValidator != nil),
		logging.Bool("live", s.live),
	)

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleMetrics() http.Handler {
	prom := promhttp.HandlerFor(s.metricsRegistry.GetPrometheusRegistry(), promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metricsRegistry.UpdateSystemMetrics(s.startTime)
		prom.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.respondError(w, http.StatusNotFound, "Not found")
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}
