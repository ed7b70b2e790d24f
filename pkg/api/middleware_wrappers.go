package api

import (
	"net/http"

	"github.com/dd0wney/cluso-netcanvas/pkg/api/middleware"
)

// panicRecoveryMiddleware recovers from panics in HTTP handlers
func (s *Server) panicRecoveryMiddleware(next http.Handler) http.Handler {
	return middleware.PanicRecovery(s.logger)(next)
}

// loggingMiddleware logs HTTP requests with timing information
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return middleware.Logging(s.logger)(next)
}

// corsMiddleware handles Cross-Origin Resource Sharing
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return middleware.CORS(s.corsConfig)(next)
}

// bodySizeLimitMiddleware limits the size of incoming request bodies
func (s *Server) bodySizeLimitMiddleware(next http.Handler, maxBytes int64) http.Handler {
	return middleware.BodySizeLimit(maxBytes)(next)
}

// requestIDMiddleware adds a unique request ID to each request
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return middleware.RequestID()(next)
}

// securityHeadersMiddleware adds security headers to responses
func (s *Server) securityHeadersMiddleware(next http.Handler) http.Handler {
	return middleware.SecurityHeaders(&middleware.SecurityHeadersConfig{})(next)
}

// metricsMiddleware records request counts, durations and sizes
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return middleware.Metrics(s.metricsRegistry)(next)
}

// rateLimitMiddleware throttles each client address
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return middleware.RateLimit(s.rateLimiter, s.clientIPs.ClientIP, s.logger)(next)
}

// authMiddleware requires a bearer token when a validator is configured
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return middleware.BearerAuth(s.tokenValidator, s.metricsRegistry, s.logger)(next)
}

// requireWriter rejects read-only roles
func (s *Server) requireWriter(next http.HandlerFunc) http.Handler {
	return middleware.RequireWriter(next)
}
