package api

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-netcanvas/pkg/layout"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
	"github.com/dd0wney/cluso-netcanvas/pkg/topology"
	"github.com/dd0wney/cluso-netcanvas/pkg/validation"
)

// statusLabels are NetBox's display labels for device statuses
var statusLabels = map[string]string{
	"offline":         "Offline",
	"active":          "Active",
	"planned":         "Planned",
	"staged":          "Staged",
	"failed":          "Failed",
	"inventory":       "Inventory",
	"decommissioning": "Decommissioning",
}

func statusValue(status string) StatusValue {
	if status == "" {
		return StatusValue{Value: "unknown", Label: "Unknown"}
	}
	label, ok := statusLabels[status]
	if !ok {
		label = status
	}
	return StatusValue{Value: status, Label: label}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deviceResponse(d *netbox.Device) DeviceResponse {
	category := topology.Classify(d)
	resp := DeviceResponse{
		ID:          d.ID,
		Name:        d.Name,
		DisplayName: d.DisplayName(),
		DeviceType:  DeviceTypeRef{Model: "Unknown", Manufacturer: "Unknown"},
		Site:        Ref{Name: "Unknown"},
		Role:        Ref{Name: "Unknown"},
		Status:      statusValue(d.Status),
		Category:    category,
		Icon:        topology.Icon(category),
	}
	if dt := d.DeviceType; dt != nil {
		id := dt.ID
		resp.DeviceType = DeviceTypeRef{ID: &id, Model: dt.Model, Manufacturer: "Unknown", Slug: optional(dt.Slug)}
		if dt.Manufacturer != nil {
			resp.DeviceType.Manufacturer = dt.Manufacturer.Name
		}
	}
	if site := d.Site; site != nil {
		id := site.ID
		resp.Site = Ref{ID: &id, Name: site.Name, Slug: optional(site.Slug)}
	}
	if role := d.Role; role != nil {
		id := role.ID
		resp.Role = Ref{ID: &id, Name: role.Name, Slug: optional(role.Slug)}
	}
	if d.PrimaryIP4 != nil {
		resp.PrimaryIP4 = optional(d.PrimaryIP4.Address)
	}
	if d.PrimaryIP6 != nil {
		resp.PrimaryIP6 = optional(d.PrimaryIP6.Address)
	}
	return resp
}

func newTopologyResponse(res *topology.Result) TopologyResponse {
	resp := TopologyResponse{
		Devices:     make([]DeviceResponse, 0, len(res.Records)),
		Interfaces:  make([]InterfaceResponse, 0, len(res.Interfaces)),
		Connections: res.Connections,
	}
	for i := range res.Records {
		resp.Devices = append(resp.Devices, deviceResponse(&res.Records[i]))
	}
	for i := range res.Interfaces {
		iface := &res.Interfaces[i]
		resp.Interfaces = append(resp.Interfaces, InterfaceResponse{
			ID:         iface.ID,
			Name:       iface.Name,
			Device:     iface.DeviceID,
			DeviceName: iface.DeviceName,
			Type:       iface.Type,
			Enabled:    iface.Enabled,
			Connected:  iface.Connected(),
		})
	}
	if resp.Connections == nil {
		resp.Connections = []topology.Connection{}
	}
	resp.Metadata = TopologyMetadata{
		TotalDevices:     len(resp.Devices),
		TotalInterfaces:  len(resp.Interfaces),
		TotalConnections: len(resp.Connections),
		GeneratedAt:      res.GeneratedAt,
	}
	return resp
}

// handleTopology serves GET /api/topology?site=&device_type=&limit=
func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).
		Get(func() { s.getTopology(w, r) }).
		NotAllowed()
}

func (s *Server) getTopology(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params, err := validation.ParseTopologyQuery(validation.TopologyQuery{
		Site:       q.Get("site"),
		DeviceType: q.Get("device_type"),
		Limit:      q.Get("limit"),
	})
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := topology.APIOptions(params.Limit)
	opts.SiteID = params.SiteID
	opts.ModelContains = params.DeviceType

	res, err := s.extractor.Extract(r.Context(), opts)
	if err != nil {
		s.respondJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to generate topology data",
			Message: s.sanitizeError(r, err, "topology extraction"),
		})
		return
	}
	s.respondJSON(w, http.StatusOK, newTopologyResponse(res))
}

// dashboardOptions reads ?enhanced=&synthesize=&layout= over the dashboard
// presets and the configured defaults
func (s *Server) dashboardOptions(r *http.Request, enhanced bool) (topology.Options, error) {
	q := r.URL.Query()
	if v := q.Get("enhanced"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return topology.Options{}, badParam("enhanced", v)
		}
		enhanced = b
	}

	opts := topology.DashboardOptions()
	if enhanced {
		opts = topology.EnhancedOptions()
	}
	opts = s.withDefaults(opts)

	if v := q.Get("synthesize"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, badParam("synthesize", v)
		}
		opts.Synthesize = b
	}
	if v, ok := q["layout"]; ok {
		name := strings.TrimSpace(v[0])
		if name != "" && name != "none" && !slices.Contains(layout.Algorithms, name) {
			return opts, badParam("layout", name)
		}
		if name == "none" {
			name = ""
		}
		opts.Layout = name
	}
	return opts, nil
}

func badParam(name, value string) error {
	return fmt.Errorf("invalid %s parameter: %q", name, value)
}

// handleDashboardTopology serves the dashboard payload as JSON
func (s *Server) handleDashboardTopology(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).
		Get(func() {
			opts, err := s.dashboardOptions(r, false)
			if err != nil {
				s.respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			res, err := s.extractor.Extract(r.Context(), opts)
			if err != nil {
				s.respondJSON(w, http.StatusInternalServerError, ErrorResponse{
					Error:   "Failed to generate topology data",
					Message: s.sanitizeError(r, err, "topology extraction"),
				})
				return
			}
			s.respondJSON(w, http.StatusOK, res)
		}).
		NotAllowed()
}
