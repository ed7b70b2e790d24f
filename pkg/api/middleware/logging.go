package middleware

import (
	"net/http"
	"time"

	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
)

// Logging attaches a request-scoped logger (carrying the request id) to the
// context and logs one line per request with status and latency.
func Logging(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := logger
			if id := GetRequestID(r); id != "" {
				reqLogger = logger.With(logging.RequestID(id))
			}
			r = r.WithContext(logging.NewContext(r.Context(), reqLogger))

			sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(sw, r)

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.Path(r.URL.Path),
				logging.Int("status", sw.statusCode),
				logging.Int("bytes", sw.bytesWritten),
				logging.Latency(time.Since(start)),
			}
			switch {
			case sw.statusCode >= 500:
				reqLogger.Error("request failed", fields...)
			case sw.statusCode >= 400:
				reqLogger.Warn("request rejected", fields...)
			default:
				reqLogger.Info("request served", fields...)
			}
		})
	}
}
