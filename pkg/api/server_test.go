package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dd0wney/cluso-netcanvas/pkg/auth"
	"github.com/dd0wney/cluso-netcanvas/pkg/config"
	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
	"github.com/dd0wney/cluso-netcanvas/pkg/metrics"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox/netboxtest"
)

const testSecret = "test-secret-key-must-be-at-least-32-characters-long"

var errStore = errors.New("connection refused")

// faultyStore fails selected queries of an in-memory store
type faultyStore struct {
	*netbox.MemoryStore
	devicesErr   error
	summariesErr error
	countsErr    error
}

func (f *faultyStore) ListDevices(ctx context.Context, filter netbox.DeviceFilter) (*netbox.DeviceSet, error) {
	if f.devicesErr != nil {
		return nil, f.devicesErr
	}
	return f.MemoryStore.ListDevices(ctx, filter)
}

func (f *faultyStore) ListDeviceSummaries(ctx context.Context, limit int) ([]netbox.Device, error) {
	if f.summariesErr != nil {
		return nil, f.summariesErr
	}
	return f.MemoryStore.ListDeviceSummaries(ctx, limit)
}

func (f *faultyStore) Counts(ctx context.Context) (netbox.Counts, error) {
	if f.countsErr != nil {
		return netbox.Counts{}, f.countsErr
	}
	return f.MemoryStore.Counts(ctx)
}

type testOption func(cfg *config.Config, deps *Deps)

func withStore(store netbox.Store) testOption {
	return func(_ *config.Config, deps *Deps) { deps.Store = store }
}

// withLogger sends the server's JSON logs to w
func withLogger(w io.Writer) testOption {
	return func(_ *config.Config, deps *Deps) { deps.Logger = logging.NewJSONLogger(w, logging.DebugLevel) }
}

func withAuth(t *testing.T) testOption {
	return func(_ *config.Config, deps *Deps) {
		m, err := auth.NewJWTManager(testSecret, time.Hour)
		if err != nil {
			t.Fatalf("NewJWTManager() error = %v", err)
		}
		deps.Tokens = m
	}
}

// setupTestServer creates a test server over the campus fixture. Rate
// limiting is off unless an option turns it on.
func setupTestServer(t *testing.T, opts ...testOption) (*Server, *netboxtest.Campus) {
	t.Helper()

	campus := netboxtest.NewCampus()
	cfg := config.Default()
	cfg.Server.RateLimit = 0
	deps := Deps{Store: campus.Store(), Metrics: metrics.NewRegistry(), Version: "test"}
	for _, opt := range opts {
		opt(cfg, &deps)
	}

	server, err := NewServer(cfg, deps)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	t.Cleanup(func() { _ = server.Shutdown(context.Background()) })
	return server, campus
}

func do(t *testing.T, h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to parse response: %v. Body: %s", err, rr.Body.String())
	}
	return v
}

func TestNewServerRequiresStore(t *testing.T) {
	if _, err := NewServer(config.Default(), Deps{}); err == nil {
		t.Error("Expected error without a store")
	}
}

func TestNewServerRejectsBadConfig(t *testing.T) {
	store := netboxtest.NewCampus().Store()

	cfg := config.Default()
	cfg.Topology.Grouping = "rack"
	if _, err := NewServer(cfg, Deps{Store: store, Metrics: metrics.NewRegistry()}); err == nil {
		t.Error("Expected error for unknown grouping")
	}

	cfg = config.Default()
	cfg.Server.TrustedProxies = []string{"not-an-ip"}
	if _, err := NewServer(cfg, Deps{Store: store, Metrics: metrics.NewRegistry()}); err == nil {
		t.Error("Expected error for invalid trusted proxy")
	}
}

func TestHealthEndpoints(t *testing.T) {
	server, _ := setupTestServer(t)
	h := server.Handler()

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		rr := do(t, h, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d. Body: %s", path, rr.Code, rr.Body.String())
		}
	}

	ready := decode[map[string]any](t, do(t, h, http.MethodGet, "/health/ready", ""))
	checks := ready["checks"].(map[string]any)
	for _, name := range []string{"database", "schema", "canvases", "memory"} {
		if _, ok := checks[name]; !ok {
			t.Errorf("readiness is missing the %s check", name)
		}
	}
}

func TestReadinessFailsWhenDatabaseIsDown(t *testing.T) {
	store := &pingFailStore{faultyStore{MemoryStore: netboxtest.NewCampus().Store()}}
	server, _ := setupTestServer(t, withStore(store))
	h := server.Handler()

	if rr := do(t, h, http.MethodGet, "/health/ready", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/health/live", ""); rr.Code != http.StatusOK {
		t.Errorf("Liveness should not depend on the database, got %d", rr.Code)
	}
}

type pingFailStore struct{ faultyStore }

func (pingFailStore) Ping(context.Context) error { return errStore }

func TestMetricsEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)
	h := server.Handler()

	do(t, h, http.MethodGet, "/api/topology", "")
	rr := do(t, h, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, name := range []string{
		"netcanvas_http_requests_total",
		"netcanvas_topology_extractions_total",
		"netcanvas_uptime_seconds",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output is missing %s", name)
		}
	}
	if !strings.Contains(body, `path="/api/topology"`) {
		t.Error("request to /api/topology was not recorded")
	}
}

func TestRootRedirectsToDashboard(t *testing.T) {
	server, _ := setupTestServer(t)
	h := server.Handler()

	rr := do(t, h, http.MethodGet, "/", "")
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/dashboard" {
		t.Errorf("Expected redirect to /dashboard, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if rr := do(t, h, http.MethodGet, "/nowhere", ""); rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rr.Code)
	}
}

func TestMiddlewareChain(t *testing.T) {
	server, _ := setupTestServer(t)
	h := server.Handler()

	rr := do(t, h, http.MethodGet, "/api/topology", "", "X-Request-ID", "trace-123")
	if got := rr.Header().Get("X-Request-ID"); got != "trace-123" {
		t.Errorf("X-Request-ID = %q, want trace-123", got)
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing")
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("CSP header missing")
	}
}

func TestRateLimit(t *testing.T) {
	server, _ := setupTestServer(t, func(cfg *config.Config, _ *Deps) {
		cfg.Server.RateLimit = 0.001
		cfg.Server.RateBurst = 2
	})
	h := server.Handler()

	for i := 0; i < 2; i++ {
		if rr := do(t, h, http.MethodGet, "/health/live", ""); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
	rr := do(t, h, http.MethodGet, "/health/live", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestBodySizeLimit(t *testing.T) {
	server, _ := setupTestServer(t, func(cfg *config.Config, _ *Deps) {
		cfg.Server.MaxBodyBytes = 64
	})
	h := server.Handler()

	body := `{"name":"big","description":"` + strings.Repeat("x", 200) + `"}`
	rr := do(t, h, http.MethodPost, "/api/canvases", body)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d. Body: %s", rr.Code, rr.Body.String())
	}
}

func TestAuth(t *testing.T) {
	server, _ := setupTestServer(t, withAuth(t))
	h := server.Handler()
	manager := server.tokenValidator.(*auth.JWTManager)

	token := func(role string) string {
		tok, err := manager.GenerateToken("alice", role)
		if err != nil {
			t.Fatal(err)
		}
		return "Bearer " + tok
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		auth   string
		status int
	}{
		{"health is public", http.MethodGet, "/health", "", "", http.StatusOK},
		{"dashboard is public", http.MethodGet, "/dashboard", "", "", http.StatusOK},
		{"api needs token", http.MethodGet, "/api/topology", "", "", http.StatusUnauthorized},
		{"graphql needs token", http.MethodPost, "/graphql", `{"query":"{ health }"}`, "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/topology", "", "Bearer nope", http.StatusUnauthorized},
		{"viewer reads", http.MethodGet, "/api/topology", "", token(auth.RoleViewer), http.StatusOK},
		{"viewer cannot write", http.MethodPost, "/api/canvases", `{"name":"x"}`, token(auth.RoleViewer), http.StatusForbidden},
		{"editor writes", http.MethodPost, "/api/canvases", `{"name":"x"}`, token(auth.RoleEditor), http.StatusCreated},
		{"graphql with token", http.MethodPost, "/graphql", `{"query":"{ health }"}`, token(auth.RoleViewer), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var header []string
			if tt.auth != "" {
				header = []string{"Authorization", tt.auth}
			}
			rr := do(t, h, tt.method, tt.path, tt.body, header...)
			if rr.Code != tt.status {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestGraphQLRoute(t *testing.T) {
	server, _ := setupTestServer(t)
	h := server.Handler()

	rr := do(t, h, http.MethodPost, "/graphql", `{"query":"{ topology { stats { totalDevices totalConnections } } }"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Data struct {
			Topology struct {
				Stats struct {
					TotalDevices     int `json:"totalDevices"`
					TotalConnections int `json:"totalConnections"`
				} `json:"stats"`
			} `json:"topology"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Topology.Stats.TotalDevices != 6 || resp.Data.Topology.Stats.TotalConnections != 5 {
		t.Errorf("stats = %+v", resp.Data.Topology.Stats)
	}
}

func TestServeAndShutdown(t *testing.T) {
	server, _ := setupTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- server.Serve(ln) }()

	url := "http://" + ln.Addr().String() + "/health/live"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Serve() returned %v after shutdown", err)
	}
}

func TestRespondError(t *testing.T) {
	server, _ := setupTestServer(t)
	rr := httptest.NewRecorder()
	server.respondError(rr, http.StatusBadRequest, "limit: must be a number")

	resp := decode[ErrorResponse](t, rr)
	if resp.Error != "Bad Request" || resp.Code != 400 || resp.Message != "limit: must be a number" {
		t.Errorf("unexpected error body %+v", resp)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestSanitizeError(t *testing.T) {
	server, _ := setupTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	msg := server.sanitizeError(req, errors.New("dial tcp 10.0.0.5:5432: connection refused"), "debug data collection")
	if msg != "debug data collection failed" {
		t.Errorf("sanitizeError() = %q", msg)
	}
	if server.sanitizeError(req, nil, "x") != "" {
		t.Error("nil error should sanitize to empty")
	}
}

// jsonBody encodes v for a request body
func jsonBody(t *testing.T, v any) string {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}
