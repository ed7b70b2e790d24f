package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewHealthChecker(t *testing.T) {
	hc := NewHealthChecker()

	if hc.readyChecks == nil || hc.liveChecks == nil {
		t.Fatal("check maps not initialized")
	}
	if hc.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", hc.timeout, DefaultTimeout)
	}
}

func TestReadinessAndLivenessAreSeparate(t *testing.T) {
	hc := NewHealthChecker()

	readyCalls, liveCalls := 0, 0
	hc.RegisterReadinessCheck("database", func(context.Context) Check {
		readyCalls++
		return Check{Status: StatusHealthy}
	})
	hc.RegisterLivenessCheck("process", func(context.Context) Check {
		liveCalls++
		return Check{Status: StatusHealthy}
	})

	hc.CheckLiveness(context.Background())
	if readyCalls != 0 || liveCalls != 1 {
		t.Errorf("after liveness: ready=%d live=%d", readyCalls, liveCalls)
	}

	resp := hc.CheckReadiness(context.Background())
	if readyCalls != 1 {
		t.Errorf("readiness check called %d times", readyCalls)
	}
	if _, ok := resp.Checks["database"]; !ok {
		t.Error("readiness result missing")
	}

	all := hc.Check(context.Background())
	if len(all.Checks) != 2 {
		t.Errorf("Check() ran %d checks, want 2", len(all.Checks))
	}
	if all.Checks["process"].Name != "process" {
		t.Errorf("check name defaulted to %q", all.Checks["process"].Name)
	}
}

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"no checks", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			for i, s := range tt.statuses {
				s := s
				hc.RegisterReadinessCheck(string(rune('a'+i)), func(context.Context) Check {
					return Check{Status: s}
				})
			}
			if got := hc.CheckReadiness(context.Background()).Status; got != tt.want {
				t.Errorf("status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestChecksReceiveDeadline(t *testing.T) {
	hc := NewHealthChecker()
	hc.SetTimeout(50 * time.Millisecond)
	hc.SetTimeout(0)

	hc.RegisterReadinessCheck("database", DatabaseCheck(func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline")
		}
		<-ctx.Done()
		return ctx.Err()
	}))

	start := time.Now()
	resp := hc.CheckReadiness(context.Background())
	if time.Since(start) > time.Second {
		t.Fatal("check was not bounded by the timeout")
	}
	db := resp.Checks["database"]
	if db.Status != StatusUnhealthy || db.Message != context.DeadlineExceeded.Error() {
		t.Errorf("database check = %+v", db)
	}
}

func TestDatabaseCheck(t *testing.T) {
	ok := DatabaseCheck(func(context.Context) error { return nil })(context.Background())
	if ok.Status != StatusHealthy || ok.Message != "Connected" {
		t.Errorf("healthy db check = %+v", ok)
	}

	bad := DatabaseCheck(func(context.Context) error { return errors.New("connection refused") })(context.Background())
	if bad.Status != StatusUnhealthy || bad.Message != "connection refused" {
		t.Errorf("failing db check = %+v", bad)
	}
}

func TestSchemaCheck(t *testing.T) {
	tests := []struct {
		shape string
		live  bool
		want  Status
	}{
		{"cabletermination", true, StatusHealthy},
		{"legacy", true, StatusHealthy},
		{"unknown", true, StatusDegraded},
		{"unknown", false, StatusHealthy},
	}

	for _, tt := range tests {
		c := SchemaCheck(func() string { return tt.shape }, tt.live)(context.Background())
		if c.Status != tt.want {
			t.Errorf("SchemaCheck(%s, live=%v) = %s, want %s", tt.shape, tt.live, c.Status, tt.want)
		}
		if c.Details["shape"] != tt.shape {
			t.Errorf("details = %v", c.Details)
		}
	}
}

func TestMemoryCheck(t *testing.T) {
	high := memoryCheck(func() (uint64, uint64) { return 95, 100 })(context.Background())
	if high.Status != StatusDegraded {
		t.Errorf("high usage = %s, want degraded", high.Status)
	}
	normal := memoryCheck(func() (uint64, uint64) { return 10, 100 })(context.Background())
	if normal.Status != StatusHealthy {
		t.Errorf("normal usage = %s, want healthy", normal.Status)
	}
	zero := memoryCheck(func() (uint64, uint64) { return 0, 0 })(context.Background())
	if zero.Status != StatusHealthy {
		t.Errorf("zero sys = %s, want healthy", zero.Status)
	}
	if MemoryCheck()(context.Background()).Details["sys_bytes"] == uint64(0) {
		t.Error("runtime memory stats not read")
	}
}

func TestHandlers(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterLivenessCheck("process", SimpleCheck("process"))
	hc.RegisterReadinessCheck("schema", func(context.Context) Check {
		return Check{Status: StatusDegraded}
	})

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    int
		status  Status
	}{
		{"health", hc.HTTPHandler(), http.StatusOK, StatusDegraded},
		{"ready", hc.ReadinessHandler(), http.StatusOK, StatusDegraded},
		{"live", hc.LivenessHandler(), http.StatusOK, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.want {
				t.Errorf("status code = %d, want %d", rec.Code, tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var resp Response
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.status {
				t.Errorf("body status = %s, want %s", resp.Status, tt.status)
			}
		})
	}
}

func TestUnhealthyReadinessAnswers503(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterReadinessCheck("database", DatabaseCheck(func(context.Context) error {
		return errors.New("down")
	}))

	rec := httptest.NewRecorder()
	hc.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status code = %d, want 503", rec.Code)
	}
}
