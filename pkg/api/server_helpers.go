package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	s.respondJSON(w, status, response)
}

// sanitizeError converts an internal error to a user-safe message.
// Internal details like SQL text and addresses are logged but not exposed.
func (s *Server) sanitizeError(r *http.Request, err error, operation string) string {
	if err == nil {
		return ""
	}

	logging.FromContext(r.Context(), s.logger).Error("request failed",
		logging.Operation(operation),
		logging.Error(err),
	)

	return fmt.Sprintf("%s failed", operation)
}

// requestLogger returns the request-scoped logger
func (s *Server) requestLogger(r *http.Request) logging.Logger {
	return logging.FromContext(r.Context(), s.logger)
}
