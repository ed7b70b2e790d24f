package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dd0wney/cluso-netcanvas/pkg/canvas"
	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
)

// handleCanvases serves GET and POST /api/canvases
func (s *Server) handleCanvases(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).
		Get(func() { s.listCanvases(w, r) }).
		Post(func() { s.requireWriter(s.createCanvas).ServeHTTP(w, r) }).
		NotAllowed()
}

// handleCanvas serves GET, PUT and DELETE /api/canvases/{id}
func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	id, ok := s.NewPathExtractor(w, r).ExtractInt64("/api/canvases/")
	if !ok {
		return
	}

	s.NewMethodRouter(w, r).
		Get(func() { s.getCanvas(w, r, id) }).
		Put(func() {
			s.requireWriter(func(w http.ResponseWriter, r *http.Request) { s.updateCanvas(w, r, id) }).ServeHTTP(w, r)
		}).
		Delete(func() {
			s.requireWriter(func(w http.ResponseWriter, r *http.Request) { s.deleteCanvas(w, r, id) }).ServeHTTP(w, r)
		}).
		NotAllowed()
}

// respondCanvasError maps store errors to status codes
func (s *Server) respondCanvasError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	switch {
	case errors.Is(err, canvas.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "Canvas not found")
	case errors.Is(err, canvas.ErrInvalid):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, s.sanitizeError(r, err, operation))
	}
}

func (s *Server) listCanvases(w http.ResponseWriter, r *http.Request) {
	list, err := s.canvases.List(r.Context())
	s.metricsRegistry.RecordCanvasOperation("list", err)
	if err != nil {
		s.respondCanvasError(w, r, err, "list canvases")
		return
	}
	if list == nil {
		list = []canvas.Canvas{}
	}
	s.respondJSON(w, http.StatusOK, CanvasListResponse{Count: len(list), Results: list})
}

func (s *Server) getCanvas(w http.ResponseWriter, r *http.Request, id int64) {
	c, err := s.canvases.Get(r.Context(), id)
	s.metricsRegistry.RecordCanvasOperation("get", err)
	if err != nil {
		s.respondCanvasError(w, r, err, "get canvas")
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}

func (s *Server) createCanvas(w http.ResponseWriter, r *http.Request) {
	var in canvas.Input
	if s.NewRequestDecoder(w, r).DecodeJSON(&in).Validate(&in).RespondError() {
		return
	}

	c, err := s.canvases.Create(r.Context(), in)
	s.metricsRegistry.RecordCanvasOperation("create", err)
	if err != nil {
		s.respondCanvasError(w, r, err, "create canvas")
		return
	}
	s.requestLogger(r).Info("canvas created",
		logging.Int64("canvas_id", c.ID),
		logging.String("name", c.Name),
	)
	w.Header().Set("Location", canvasPath(c.ID))
	s.respondJSON(w, http.StatusCreated, c)
}

func (s *Server) updateCanvas(w http.ResponseWriter, r *http.Request, id int64) {
	var in canvas.Input
	if s.NewRequestDecoder(w, r).DecodeJSON(&in).Validate(&in).RespondError() {
		return
	}

	c, err := s.canvases.Update(r.Context(), id, in)
	s.metricsRegistry.RecordCanvasOperation("update", err)
	if err != nil {
		s.respondCanvasError(w, r, err, "update canvas")
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCanvas(w http.ResponseWriter, r *http.Request, id int64) {
	err := s.canvases.Delete(r.Context(), id)
	s.metricsRegistry.RecordCanvasOperation("delete", err)
	if err != nil {
		s.respondCanvasError(w, r, err, "delete canvas")
		return
	}
	s.requestLogger(r).Info("canvas deleted", logging.Int64("canvas_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func canvasPath(id int64) string {
	return "/api/canvases/" + strconv.FormatInt(id, 10)
}
