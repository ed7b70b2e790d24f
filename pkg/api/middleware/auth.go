package middleware

import (
	"net/http"
	"strings"

	"github.com/dd0wney/cluso-netcanvas/pkg/auth"
	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
)

// AuthFailureRecorder counts rejected requests
type AuthFailureRecorder interface {
	RecordAuthFailure(missing bool)
}

// BearerAuth requires a valid "Authorization: Bearer <token>" header and
// stores the claims in the request context. A nil validator disables it.
func BearerAuth(validator auth.TokenValidator, recorder AuthFailureRecorder, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				if recorder != nil {
					recorder.RecordAuthFailure(true)
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="netcanvas"`)
				writeError(w, http.StatusUnauthorized, "Missing bearer token")
				return
			}

			claims, err := validator.ValidateToken(r.Context(), strings.TrimSpace(token))
			if err != nil {
				if recorder != nil {
					recorder.RecordAuthFailure(false)
				}
				logging.FromContext(r.Context(), logger).Warn("token rejected",
					logging.String("validator", validator.Name()),
					logging.Error(err),
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="netcanvas", error="invalid_token"`)
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), claims)))
		})
	}
}

// RequireWriter allows the request only for roles that may modify canvases.
// Without claims in the context (auth disabled) every request passes.
func RequireWriter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := auth.FromContext(r.Context()); ok && !auth.CanWrite(claims.Role) {
			writeError(w, http.StatusForbidden, "Editor role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
