package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox/netboxtest"
)

func TestDebugEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	rr := do(t, server.Handler(), http.MethodGet, "/api/debug", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}
	resp := decode[DebugResponse](t, rr)

	if resp.TotalDevices != 6 || resp.DevicesWithSites != 6 || resp.TotalSites != 2 || resp.TotalCables != 5 {
		t.Errorf("counts = %d/%d/%d/%d, want 6/6/2/5",
			resp.TotalDevices, resp.DevicesWithSites, resp.TotalSites, resp.TotalCables)
	}
	if len(resp.DeviceStatuses) != 1 || resp.DeviceStatuses["active"] != 6 {
		t.Errorf("device_statuses = %v", resp.DeviceStatuses)
	}
	if len(resp.SampleDevices) != 6 {
		t.Errorf("Expected 6 sample devices, got %d", len(resp.SampleDevices))
	}
	for _, d := range resp.SampleDevices {
		if d.Site == nil || d.DeviceType == nil || d.Role == nil {
			t.Errorf("sample %s is missing related names", d.Name)
		}
	}
	want := []netbox.SiteCount{{Name: "HQ", DeviceCount: 4}, {Name: "Branch", DeviceCount: 2}}
	if len(resp.Sites) != len(want) {
		t.Fatalf("sites = %+v", resp.Sites)
	}
	for i := range want {
		if resp.Sites[i] != want[i] {
			t.Errorf("sites[%d] = %+v, want %+v", i, resp.Sites[i], want[i])
		}
	}
}

func TestDebugUnsitedDevice(t *testing.T) {
	b := netboxtest.New()
	b.Device("orphan", 0, "", "")
	server, _ := setupTestServer(t, withStore(b.Store()))

	resp := decode[DebugResponse](t, do(t, server.Handler(), http.MethodGet, "/api/debug", ""))
	if resp.TotalDevices != 1 || resp.DevicesWithSites != 0 {
		t.Errorf("counts = %d/%d", resp.TotalDevices, resp.DevicesWithSites)
	}
	if s := resp.SampleDevices[0]; s.Site != nil || s.DeviceType != nil || s.Role != nil {
		t.Errorf("unset references should be null: %+v", s)
	}

	raw := do(t, server.Handler(), http.MethodGet, "/api/debug", "").Body.String()
	if !strings.Contains(raw, `"site":null`) {
		t.Errorf("expected a null site in %s", raw)
	}
}

func TestDebugFailure(t *testing.T) {
	store := &faultyStore{MemoryStore: netboxtest.NewCampus().Store(), countsErr: errStore}
	server, _ := setupTestServer(t, withStore(store))

	rr := do(t, server.Handler(), http.MethodGet, "/api/debug", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rr.Code)
	}
	resp := decode[DebugErrorResponse](t, rr)
	if resp.Message != "Debug data collection failed" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Error == "" || strings.Contains(resp.Error, errStore.Error()) {
		t.Errorf("error = %q, want a sanitized description", resp.Error)
	}
}
