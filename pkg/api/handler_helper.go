package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-netcanvas/pkg/validation"
)

// requestDecoder decodes and validates request bodies.
// It provides a fluent interface for common request handling patterns.
type requestDecoder struct {
	r          *http.Request
	w          http.ResponseWriter
	server     *Server
	err        error
	statusCode int
}

// NewRequestDecoder creates a new request decoder for the given request.
func (s *Server) NewRequestDecoder(w http.ResponseWriter, r *http.Request) *requestDecoder {
	return &requestDecoder{
		r:      r,
		w:      w,
		server: s,
	}
}

// DecodeJSON decodes the request body into the provided struct.
// Returns the decoder for chaining. Check HasError() after calling.
func (rd *requestDecoder) DecodeJSON(v any) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := json.NewDecoder(rd.r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rd.err = errors.New("request body too large")
			rd.statusCode = http.StatusRequestEntityTooLarge
			return rd
		}
		rd.err = fmt.Errorf("invalid request body: %w", err)
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// Validate checks v against its validate struct tags.
// Returns the decoder for chaining.
func (rd *requestDecoder) Validate(v any) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := validation.Struct(v); err != nil {
		rd.err = err
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// HasError returns true if any error occurred during decoding/validation.
func (rd *requestDecoder) HasError() bool {
	return rd.err != nil
}

// Error returns the error if any occurred.
func (rd *requestDecoder) Error() error {
	return rd.err
}

// RespondError sends the error response and returns true if there was an error.
// Returns false if no error occurred.
func (rd *requestDecoder) RespondError() bool {
	if rd.err == nil {
		return false
	}
	rd.server.respondError(rd.w, rd.statusCode, rd.err.Error())
	return true
}

// pathIDExtractor extracts IDs from URL paths.
type pathIDExtractor struct {
	w      http.ResponseWriter
	server *Server
	path   string
}

// NewPathExtractor creates a new path extractor.
func (s *Server) NewPathExtractor(w http.ResponseWriter, r *http.Request) *pathIDExtractor {
	return &pathIDExtractor{
		w:      w,
		server: s,
		path:   r.URL.Path,
	}
}

// ExtractInt64 extracts a positive int64 ID from the path after the given prefix.
// Returns the ID and true on success, or 0 and false on error (error response sent).
func (pe *pathIDExtractor) ExtractInt64(prefix string) (int64, bool) {
	if !strings.HasPrefix(pe.path, prefix) {
		pe.server.respondError(pe.w, http.StatusBadRequest, "Invalid path")
		return 0, false
	}
	idStr := pe.path[len(prefix):]
	// Remove trailing slash if present
	idStr = strings.TrimSuffix(idStr, "/")

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		pe.server.respondError(pe.w, http.StatusBadRequest, "Invalid ID format")
		return 0, false
	}
	return id, true
}

// methodRouter routes requests based on HTTP method.
// Provides a cleaner alternative to switch statements for method routing.
type methodRouter struct {
	w       http.ResponseWriter
	r       *http.Request
	server  *Server
	handled bool
	allowed []string
}

// NewMethodRouter creates a new method router.
func (s *Server) NewMethodRouter(w http.ResponseWriter, r *http.Request) *methodRouter {
	return &methodRouter{
		w:      w,
		r:      r,
		server: s,
	}
}

func (mr *methodRouter) handle(method string, handler func()) *methodRouter {
	mr.allowed = append(mr.allowed, method)
	if !mr.handled && mr.r.Method == method {
		handler()
		mr.handled = true
	}
	return mr
}

// Get handles GET requests with the provided handler.
func (mr *methodRouter) Get(handler func()) *methodRouter {
	return mr.handle(http.MethodGet, handler)
}

// Post handles POST requests with the provided handler.
func (mr *methodRouter) Post(handler func()) *methodRouter {
	return mr.handle(http.MethodPost, handler)
}

// Put handles PUT requests with the provided handler.
func (mr *methodRouter) Put(handler func()) *methodRouter {
	return mr.handle(http.MethodPut, handler)
}

// Delete handles DELETE requests with the provided handler.
func (mr *methodRouter) Delete(handler func()) *methodRouter {
	return mr.handle(http.MethodDelete, handler)
}

// NotAllowed sends 405 with an Allow header if no handler matched.
func (mr *methodRouter) NotAllowed() {
	if mr.handled {
		return
	}
	mr.w.Header().Set("Allow", strings.Join(mr.allowed, ", "))
	mr.server.respondError(mr.w, http.StatusMethodNotAllowed, "Method not allowed")
}
