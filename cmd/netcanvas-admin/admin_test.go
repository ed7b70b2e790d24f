package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox/netboxtest"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"y\n", false},
		{"\n", false},
		{"", false},
		{"yes", true},
	}
	for _, tt := range tests {
		got, err := confirm(strings.NewReader(tt.input), "")
		if err != nil {
			t.Fatalf("confirm(%q) error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPopulateDemoFlags(t *testing.T) {
	tests := []struct {
		args      []string
		wantSites int
		wantPer   int
	}{
		{nil, 2, 10},
		{[]string{"--sites", "4", "--devices-per-site", "6"}, 4, 6},
		{[]string{"--devices-per-site", "10"}, 2, 10},
	}
	for _, tt := range tests {
		f, err := parseDemoFlags(tt.args)
		if err != nil {
			t.Fatalf("parseDemoFlags(%v): %v", tt.args, err)
		}
		if f.sites != tt.wantSites || f.devicesPerSite != tt.wantPer {
			t.Errorf("parseDemoFlags(%v) = %d sites, %d per site", tt.args, f.sites, f.devicesPerSite)
		}
	}

	if _, err := parseDemoFlags([]string{"--devices", "8"}); err == nil {
		t.Error("the old --devices flag should be rejected")
	}
}

func TestClearNeedsOneScope(t *testing.T) {
	for _, args := range [][]string{nil, {"--all", "--demo-only"}} {
		err := runClear(context.Background(), args)
		if err == nil || !strings.Contains(err.Error(), "exactly one") {
			t.Errorf("runClear(%v) = %v", args, err)
		}
	}
}

func TestSnapshotNeedsSubcommand(t *testing.T) {
	if err := runSnapshot(context.Background(), nil); err == nil {
		t.Error("expected an error without a subcommand")
	}
	if err := runSnapshot(context.Background(), []string{"restore"}); err == nil {
		t.Error("expected an error for an unknown subcommand")
	}
}

func TestReportsRunAgainstMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := netboxtest.NewCampus().Store()

	if err := inspect(ctx, store, "campus", 3); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if err := analyzeCables(ctx, store, 0); err != nil {
		t.Fatalf("analyzeCables: %v", err)
	}
}

func TestTestCableNeedsDatabase(t *testing.T) {
	err := runTestCable(context.Background(), []string{"--snapshot", "/nonexistent/file"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, netbox.ErrReadOnly) {
		t.Fatal("missing snapshot should fail before the read-only check")
	}
}
