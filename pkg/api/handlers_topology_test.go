package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-netcanvas/pkg/netbox/netboxtest"
	"github.com/dd0wney/cluso-netcanvas/pkg/topology"
)

func findDevice(devices []DeviceResponse, id int64) *DeviceResponse {
	for i := range devices {
		if devices[i].ID == id {
			return &devices[i]
		}
	}
	return nil
}

// TestGetTopology tests the GET /api/topology endpoint
func TestGetTopology(t *testing.T) {
	server, campus := setupTestServer(t)

	rr := do(t, server.Handler(), http.MethodGet, "/api/topology", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d. Body: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	resp := decode[TopologyResponse](t, rr)

	if len(resp.Devices) != 6 || resp.Metadata.TotalDevices != 6 {
		t.Errorf("Expected 6 devices, got %d (metadata %d)", len(resp.Devices), resp.Metadata.TotalDevices)
	}
	if len(resp.Interfaces) != 10 || resp.Metadata.TotalInterfaces != 10 {
		t.Errorf("Expected 10 interfaces, got %d (metadata %d)", len(resp.Interfaces), resp.Metadata.TotalInterfaces)
	}
	if len(resp.Connections) != 5 || resp.Metadata.TotalConnections != 5 {
		t.Errorf("Expected 5 connections, got %d (metadata %d)", len(resp.Connections), resp.Metadata.TotalConnections)
	}
	if resp.Metadata.GeneratedAt.IsZero() {
		t.Error("generated_at not set")
	}

	core := findDevice(resp.Devices, campus.CoreSwitch)
	if core == nil {
		t.Fatal("core-sw1 missing")
	}
	if core.PrimaryIP4 == nil || *core.PrimaryIP4 != "10.1.10.10/24" {
		t.Errorf("primary_ip4 = %v, want the address with its mask", core.PrimaryIP4)
	}
	if core.PrimaryIP6 != nil {
		t.Errorf("primary_ip6 = %v, want null", *core.PrimaryIP6)
	}
	if core.Status != (StatusValue{Value: "active", Label: "Active"}) {
		t.Errorf("status = %+v", core.Status)
	}
	if core.Category != topology.CategorySwitch || core.Icon != topology.Icon(topology.CategorySwitch) {
		t.Errorf("category = %q icon = %q", core.Category, core.Icon)
	}
	if core.Site.Name != "HQ" || core.Site.ID == nil || *core.Site.ID != campus.HQ {
		t.Errorf("site = %+v", core.Site)
	}
	if core.DeviceType.Model != "Catalyst 9500" || core.Role.Name != "Core Switch" {
		t.Errorf("device_type = %+v role = %+v", core.DeviceType, core.Role)
	}

	router := findDevice(resp.Devices, campus.Router)
	if router.PrimaryIP6 == nil || *router.PrimaryIP6 != "2001:db8::1/64" || router.PrimaryIP4 != nil {
		t.Errorf("router addresses = %v / %v", router.PrimaryIP4, router.PrimaryIP6)
	}

	for _, iface := range resp.Interfaces {
		if !iface.Connected || !iface.Enabled {
			t.Errorf("interface %s on %s should be enabled and connected", iface.Name, iface.DeviceName)
		}
	}
}

func TestGetTopologyRawShape(t *testing.T) {
	server, _ := setupTestServer(t)

	rr := do(t, server.Handler(), http.MethodGet, "/api/topology?limit=1", "")
	raw := decode[map[string]any](t, rr)
	for _, key := range []string{"devices", "interfaces", "connections", "metadata"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("response is missing %q", key)
		}
	}
	device := raw["devices"].([]any)[0].(map[string]any)
	for _, key := range []string{"id", "name", "display_name", "device_type", "site", "role", "status", "primary_ip4", "primary_ip6"} {
		if _, ok := device[key]; !ok {
			t.Errorf("device is missing %q", key)
		}
	}
}

func TestGetTopologyFilters(t *testing.T) {
	server, campus := setupTestServer(t)
	h := server.Handler()

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"site", "?site=" + strconv.FormatInt(campus.Branch, 10), 2},
		{"model substring", "?device_type=catalyst", 2},
		{"model case-insensitive", "?device_type=POWEREDGE", 1},
		{"limit", "?limit=3", 3},
		{"limit above cap", "?limit=100000", 6},
		{"unknown site", "?site=999999", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, "/api/topology"+tt.query, "")
			if rr.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d. Body: %s", rr.Code, rr.Body.String())
			}
			resp := decode[TopologyResponse](t, rr)
			if len(resp.Devices) != tt.want {
				t.Errorf("Expected %d devices, got %d", tt.want, len(resp.Devices))
			}
		})
	}
}

func TestGetTopologyCapsLimit(t *testing.T) {
	b := netboxtest.New()
	site := b.Site("DC1")
	for i := 0; i < topology.MaxAPIDevices+20; i++ {
		b.Device(fmt.Sprintf("leaf-%03d", i), site, "Access Switch", "Catalyst 9300")
	}
	server, _ := setupTestServer(t, withStore(b.Store()))
	h := server.Handler()

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"default", "", topology.DefaultAPIDevices},
		{"just above cap", "?limit=501", topology.MaxAPIDevices},
		{"ten digits", "?limit=1000000000", topology.MaxAPIDevices},
		{"beyond int range", "?limit=99999999999999999999", topology.MaxAPIDevices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, "/api/topology"+tt.query, "")
			if rr.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d. Body: %s", rr.Code, rr.Body.String())
			}
			resp := decode[TopologyResponse](t, rr)
			if len(resp.Devices) != tt.want || resp.Metadata.TotalDevices != tt.want {
				t.Errorf("Expected %d devices, got %d", tt.want, len(resp.Devices))
			}
		})
	}
}

func TestGetTopologyBadParameters(t *testing.T) {
	server, _ := setupTestServer(t)
	h := server.Handler()

	for _, query := range []string{"?limit=abc", "?limit=0", "?limit=-5", "?site=hq", "?limit=1.5"} {
		t.Run(query, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, "/api/topology"+query, "")
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d. Body: %s", rr.Code, rr.Body.String())
			}
			resp := decode[ErrorResponse](t, rr)
			if resp.Error != "Bad Request" || resp.Code != http.StatusBadRequest || resp.Message == "" {
				t.Errorf("unexpected error body %+v", resp)
			}
		})
	}
}

func TestGetTopologyExtractionFailure(t *testing.T) {
	store := &faultyStore{MemoryStore: netboxtest.NewCampus().Store(), devicesErr: errStore}
	server, _ := setupTestServer(t, withStore(store))

	rr := do(t, server.Handler(), http.MethodGet, "/api/topology", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rr.Code)
	}
	resp := decode[ErrorResponse](t, rr)
	if resp.Error != "Failed to generate topology data" {
		t.Errorf("error = %q", resp.Error)
	}
	if strings.Contains(resp.Message, "connection refused") {
		t.Errorf("internal error leaked: %q", resp.Message)
	}
}

func TestTopologyMethodNotAllowed(t *testing.T) {
	server, _ := setupTestServer(t)

	rr := do(t, server.Handler(), http.MethodPost, "/api/topology", `{}`)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected 405, got %d", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); allow != http.MethodGet {
		t.Errorf("Allow = %q", allow)
	}
}

func TestDashboardTopology(t *testing.T) {
	server, _ := setupTestServer(t)
	h := server.Handler()

	rr := do(t, h, http.MethodGet, "/api/topology/dashboard", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}
	res := decode[topology.Result](t, rr)
	if res.Topology == nil || res.Stats.TotalDevices != 6 || res.Stats.TotalSites != 2 || res.Stats.TotalConnections != 5 {
		t.Fatalf("unexpected stats %+v", res.Topology)
	}
	if res.Debug != nil {
		t.Error("standard dashboard should not carry debug data")
	}
	if res.Devices[0].Position != nil {
		t.Error("positions should be absent without a layout")
	}

	enhanced := decode[topology.Result](t, do(t, h, http.MethodGet, "/api/topology/dashboard?enhanced=true", ""))
	if enhanced.Debug == nil {
		t.Error("enhanced dashboard should carry debug data")
	}

	laid := decode[topology.Result](t, do(t, h, http.MethodGet, "/api/topology/dashboard?layout=hierarchical", ""))
	for _, d := range laid.Devices {
		if d.Position == nil {
			t.Errorf("device %s has no position", d.Name)
		}
	}
	for _, s := range laid.Sites {
		if s.Bounds == nil {
			t.Errorf("site %s has no bounds", s.Name)
		}
	}
}

func TestDashboardTopologySynthesize(t *testing.T) {
	b := netboxtest.New()
	site := b.Site("Lab")
	b.Device("lab-rtr1", site, "Router", "ISR 4331")
	b.Device("lab-sw1", site, "Switch", "Catalyst 9300")
	server, _ := setupTestServer(t, withStore(b.Store()))
	h := server.Handler()

	plain := decode[topology.Result](t, do(t, h, http.MethodGet, "/api/topology/dashboard", ""))
	if len(plain.Connections) != 0 {
		t.Fatalf("Expected no connections without synthesis, got %d", len(plain.Connections))
	}

	synth := decode[topology.Result](t, do(t, h, http.MethodGet, "/api/topology/dashboard?synthesize=1", ""))
	if len(synth.Connections) == 0 {
		t.Fatal("Expected logical connections")
	}
	for _, c := range synth.Connections {
		if !c.Logical {
			t.Errorf("connection %s should be logical", c.ID)
		}
	}
}

func TestDashboardTopologyBadParameters(t *testing.T) {
	server, _ := setupTestServer(t)
	h := server.Handler()

	for _, query := range []string{"?layout=spiral", "?synthesize=maybe", "?enhanced=yes"} {
		rr := do(t, h, http.MethodGet, "/api/topology/dashboard"+query, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", query, rr.Code)
		}
	}
}

func TestDashboardTopologyDegrades(t *testing.T) {
	store := &faultyStore{MemoryStore: netboxtest.NewCampus().Store(), devicesErr: errStore}
	var logs bytes.Buffer
	server, _ := setupTestServer(t, withStore(store), withLogger(&logs))

	rr := do(t, server.Handler(), http.MethodGet, "/api/topology/dashboard", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), errStore.Error()) {
		t.Errorf("degraded payload leaks the store error: %s", rr.Body.String())
	}
	if !strings.Contains(logs.String(), errStore.Error()) {
		t.Error("store error should be logged")
	}
	res := decode[topology.Result](t, rr)
	if res.Error != topology.MsgSummariesOnly {
		t.Errorf("error = %q", res.Error)
	}
	if res.Stats.TotalDevices == 0 || res.Stats.TotalConnections != 0 {
		t.Errorf("expected summary devices without connections, got %+v", res.Stats)
	}
}

func TestStatusValue(t *testing.T) {
	tests := []struct {
		in   string
		want StatusValue
	}{
		{"active", StatusValue{"active", "Active"}},
		{"decommissioning", StatusValue{"decommissioning", "Decommissioning"}},
		{"custom", StatusValue{"custom", "custom"}},
		{"", StatusValue{"unknown", "Unknown"}},
	}
	for _, tt := range tests {
		if got := statusValue(tt.in); got != tt.want {
			t.Errorf("statusValue(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
