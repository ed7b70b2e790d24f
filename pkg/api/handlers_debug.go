package api

import (
	"net/http"

	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
)

const (
	debugStatusSample = 50
	debugDeviceSample = 10
	debugTopSites     = 10
)

// handleDebug serves GET /api/debug: counts and samples that show whether
// the NetBox data the canvas needs is present
func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).
		Get(func() {
			resp, err := s.collectDebug(r)
			if err != nil {
				s.respondJSON(w, http.StatusInternalServerError, DebugErrorResponse{
					Error:   s.sanitizeError(r, err, "debug data collection"),
					Message: "Debug data collection failed",
				})
				return
			}
			s.respondJSON(w, http.StatusOK, resp)
		}).
		NotAllowed()
}

func (s *Server) collectDebug(r *http.Request) (*DebugResponse, error) {
	ctx := r.Context()

	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, err
	}
	statuses, err := s.store.StatusBreakdown(ctx, debugStatusSample)
	if err != nil {
		return nil, err
	}
	set, err := s.store.ListDevices(ctx, netbox.DeviceFilter{Limit: debugDeviceSample})
	if err != nil {
		return nil, err
	}
	sites, err := s.store.TopSites(ctx, debugTopSites)
	if err != nil {
		return nil, err
	}

	resp := &DebugResponse{
		TotalDevices:     counts.Devices,
		DevicesWithSites: counts.DevicesWithSites,
		TotalSites:       counts.DistinctSiteNames,
		TotalCables:      counts.Cables,
		DeviceStatuses:   statuses,
		SampleDevices:    make([]SampleDevice, 0, len(set.Devices)),
		Sites:            sites,
	}
	if resp.DeviceStatuses == nil {
		resp.DeviceStatuses = map[string]int{}
	}
	if resp.Sites == nil {
		resp.Sites = []netbox.SiteCount{}
	}
	for _, d := range set.Devices {
		sample := SampleDevice{ID: d.ID, Name: d.Name, Status: d.Status}
		if d.Site != nil {
			sample.Site = &d.Site.Name
		}
		if d.DeviceType != nil {
			sample.DeviceType = &d.DeviceType.Model
		}
		if d.Role != nil {
			sample.Role = &d.Role.Name
		}
		resp.SampleDevices = append(resp.SampleDevices, sample)
	}
	return resp, nil
}
