package middleware

import (
	"net/http"
)

// SecurityHeadersConfig holds configuration for security headers
type SecurityHeadersConfig struct {
	TLSEnabled bool // send HSTS
	// ScriptSources is the CSP script-src list. The dashboards ship their
	// renderer and topology data inline, so the default allows inline scripts.
	ScriptSources string
}

// SecurityHeaders adds clickjacking, sniffing and content-security headers.
func SecurityHeaders(config *SecurityHeadersConfig) func(http.Handler) http.Handler {
	scripts := "'self' 'unsafe-inline'"
	if config != nil && config.ScriptSources != "" {
		scripts = config.ScriptSources
	}
	csp := "default-src 'self'; script-src " + scripts + "; style-src 'self' 'unsafe-inline'; img-src 'self' data:"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			if config != nil && config.TLSEnabled {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			h.Set("Content-Security-Policy", csp)
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}
