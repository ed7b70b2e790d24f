package source

import (
	"context"
	"time"

	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
)

// QueryRecorder observes store calls
type QueryRecorder interface {
	RecordStoreQuery(operation, status string, duration time.Duration)
}

// Instrument wraps store so every read is timed and counted by rec
func Instrument(store netbox.Store, rec QueryRecorder) netbox.Store {
	return &instrumented{Store: store, rec: rec}
}

type instrumented struct {
	netbox.Store
	rec QueryRecorder
}

func (s *instrumented) observe(op string) func(error) {
	start := time.Now()
	return func(err error) {
		status := "success"
		if err != nil {
			status = "error"
		}
		s.rec.RecordStoreQuery(op, status, time.Since(start))
	}
}

func (s *instrumented) ListDevices(ctx context.Context, filter netbox.DeviceFilter) (*netbox.DeviceSet, error) {
	done := s.observe("list_devices")
	set, err := s.Store.ListDevices(ctx, filter)
	done(err)
	return set, err
}

func (s *instrumented) ListDeviceSummaries(ctx context.Context, limit int) ([]netbox.Device, error) {
	done := s.observe("list_device_summaries")
	out, err := s.Store.ListDeviceSummaries(ctx, limit)
	done(err)
	return out, err
}

func (s *instrumented) ListCables(ctx context.Context, limit int) ([]netbox.Cable, error) {
	done := s.observe("list_cables")
	out, err := s.Store.ListCables(ctx, limit)
	done(err)
	return out, err
}

func (s *instrumented) ListInterfaces(ctx context.Context, deviceIDs []int64) ([]netbox.Interface, error) {
	done := s.observe("list_interfaces")
	out, err := s.Store.ListInterfaces(ctx, deviceIDs)
	done(err)
	return out, err
}

func (s *instrumented) ListCircuitTerminations(ctx context.Context) ([]netbox.CircuitTermination, error) {
	done := s.observe("list_circuit_terminations")
	out, err := s.Store.ListCircuitTerminations(ctx)
	done(err)
	return out, err
}

func (s *instrumented) Counts(ctx context.Context) (netbox.Counts, error) {
	done := s.observe("counts")
	out, err := s.Store.Counts(ctx)
	done(err)
	return out, err
}

func (s *instrumented) StatusBreakdown(ctx context.Context, limit int) (map[string]int, error) {
	done := s.observe("status_breakdown")
	out, err := s.Store.StatusBreakdown(ctx, limit)
	done(err)
	return out, err
}

func (s *instrumented) TopSites(ctx context.Context, limit int) ([]netbox.SiteCount, error) {
	done := s.observe("top_sites")
	out, err := s.Store.TopSites(ctx, limit)
	done(err)
	return out, err
}
