// Package middleware provides the HTTP middleware of the netcanvas server.
//
// Every middleware has the shape func(http.Handler) http.Handler, so a chain
// is built by nesting:
//
//	handler := middleware.PanicRecovery(logger)(mux)
//	handler = middleware.Metrics(registry)(handler)
//	handler = middleware.Logging(logger)(handler)
//	handler = middleware.RequestID()(handler)
//
// RequestID should be outermost so that every later log line carries the id.
package middleware
