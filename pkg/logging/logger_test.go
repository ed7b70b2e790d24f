package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []Entry {
	t.Helper()
	var out []Entry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, e)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{" warn ", WarnLevel},
		{"WARNING", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	if DebugLevel.String() != "DEBUG" || ErrorLevel.String() != "ERROR" {
		t.Errorf("unexpected level names")
	}
	if Level(42).String() != "UNKNOWN" {
		t.Errorf("Level(42).String() = %q", Level(42).String())
	}
}

func TestJSONLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept", Count(3))
	logger.Error("kept too", Error(errors.New("boom")))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Level != "WARN" || entries[0].Fields["count"] != float64(3) {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Fields["error"] != "boom" {
		t.Errorf("second entry error = %v", entries[1].Fields["error"])
	}
}

func TestJSONLogger_WithSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := NewJSONLogger(&buf, InfoLevel)
	child := parent.With(Component("extractor"), RequestID("req-1"))

	parent.SetLevel(ErrorLevel)
	child.Info("suppressed")
	child.Error("extraction failed", CableID(7))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	f := entries[0].Fields
	if f["component"] != "extractor" || f["request_id"] != "req-1" || f["cable_id"] != float64(7) {
		t.Errorf("fields = %v", f)
	}
	if child.GetLevel() != ErrorLevel {
		t.Errorf("child level = %v, want ERROR", child.GetLevel())
	}
}

func TestJSONLogger_CallFieldsOverridePreset(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel).With(Outcome("pending"))
	logger.Debug("cable", Outcome("resolved"))

	entries := decodeLines(t, &buf)
	if entries[0].Fields["outcome"] != "resolved" {
		t.Errorf("outcome = %v, want resolved", entries[0].Fields["outcome"])
	}
}

func TestJSONLogger_NoFieldsOmitsKey(t *testing.T) {
	var buf bytes.Buffer
	NewJSONLogger(&buf, InfoLevel).Info("plain")
	if strings.Contains(buf.String(), "fields") {
		t.Errorf("expected no fields key, got %s", buf.String())
	}
}

func TestFieldConstructors(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		key   string
		value any
	}{
		{"device", DeviceID(12), "device_id", int64(12)},
		{"site", SiteID(3), "site_id", int64(3)},
		{"duration", Duration("timeout", 5*time.Second), "timeout", "5s"},
		{"latency", Latency(time.Millisecond), "latency", "1ms"},
		{"nil error", Error(nil), "error", nil},
		{"path", Path("/api/topology"), "path", "/api/topology"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field.Key != tt.key || tt.field.Value != tt.value {
				t.Errorf("got %+v, want {%s %v}", tt.field, tt.key, tt.value)
			}
		})
	}
}

func TestTimer(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	StartTimer(logger, "extract", Operation("dashboard")).End(Count(5))
	StartTimer(logger, "extract").EndError(errors.New("db down"))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if _, ok := entries[0].Fields["latency"]; !ok {
		t.Errorf("missing latency in %v", entries[0].Fields)
	}
	if entries[0].Fields["operation"] != "dashboard" || entries[0].Fields["count"] != float64(5) {
		t.Errorf("fields = %v", entries[0].Fields)
	}
	if entries[1].Level != "ERROR" || entries[1].Fields["error"] != "db down" {
		t.Errorf("error entry = %+v", entries[1])
	}
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	scoped := NewJSONLogger(&buf, InfoLevel).With(RequestID("abc"))
	ctx := NewContext(context.Background(), scoped)

	FromContext(ctx, nil).Info("hello")
	if !strings.Contains(buf.String(), `"request_id":"abc"`) {
		t.Errorf("request-scoped logger not returned: %s", buf.String())
	}

	if _, ok := FromContext(context.Background(), nil).(NopLogger); !ok {
		t.Errorf("expected NopLogger fallback")
	}
	fallback := NewJSONLogger(&buf, InfoLevel)
	if FromContext(context.Background(), fallback) != Logger(fallback) {
		t.Errorf("expected provided fallback")
	}
}
