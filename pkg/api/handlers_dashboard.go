package api

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
	"github.com/dd0wney/cluso-netcanvas/pkg/topology"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"icon": func(c topology.Category) string { return topology.Icon(c) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// dashboardPage is the template context of both dashboards
type dashboardPage struct {
	Title       string
	Enhanced    bool
	DeviceCount int
	CableCount  int
	VLANCount   int
	CanvasCount int
	Error       string
	Topology    *topology.Result
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, r, false)
}

func (s *Server) handleEnhancedDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, r, true)
}

// renderDashboard renders the topology page. Failures still render the page,
// with an empty topology and the error shown.
func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, enhanced bool) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	page := dashboardPage{Title: "Network Canvas", Enhanced: enhanced}
	if enhanced {
		page.Title = "Network Canvas (Enhanced)"
	}
	s.fillCounts(r, &page)

	opts, err := s.dashboardOptions(r, enhanced)
	if err == nil {
		page.Topology, err = s.extractor.Extract(r.Context(), opts)
	}
	if err != nil {
		page.Error = s.sanitizeError(r, err, "topology extraction")
	}
	if page.Topology == nil {
		page.Topology = &topology.Result{Topology: topology.Empty()}
	}
	if page.Error == "" {
		page.Error = page.Topology.Error
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", page); err != nil {
		s.requestLogger(r).Error("failed to render dashboard", logging.Error(err))
	}
}

// fillCounts loads the stats cards. A failed count leaves its card at zero.
func (s *Server) fillCounts(r *http.Request, page *dashboardPage) {
	counts, err := s.store.Counts(r.Context())
	if err != nil {
		s.requestLogger(r).Warn("dashboard counts unavailable", logging.Error(err))
	} else {
		page.DeviceCount = counts.Devices
		page.CableCount = counts.Cables
		page.VLANCount = counts.VLANs
	}

	n, err := s.canvases.Count(r.Context())
	if err != nil {
		s.requestLogger(r).Warn("canvas count unavailable", logging.Error(err))
		return
	}
	page.CanvasCount = n
}
