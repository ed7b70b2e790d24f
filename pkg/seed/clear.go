package seed

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
)

// Scope selects which records Clear removes
type Scope int

const (
	// ScopeAll removes every record of every kind
	ScopeAll Scope = iota
	// ScopeDemo removes only what DemoPlan creates. Manufacturers, device
	// types, roles, cluster types, providers and circuit types are shared
	// catalog entries and stay.
	ScopeDemo
)

func (s Scope) String() string {
	if s == ScopeDemo {
		return "demo"
	}
	return "all"
}

// Deleted is the number of rows removed for one kind
type Deleted struct {
	Kind  netbox.Kind
	Count int64
}

// prefix returns the name prefix to delete kind with, or false to skip it
func (s Scope) prefix(kind netbox.Kind) (string, bool) {
	if s == ScopeAll {
		return "", true
	}
	switch {
	case kind.SiteScoped(), kind == netbox.KindSite:
		return DemoSitePrefix, true
	case kind == netbox.KindVLANGroup, kind == netbox.KindTenant, kind == netbox.KindTenantGroup,
		kind == netbox.KindCluster, kind == netbox.KindClusterGroup:
		return DemoPrefix, true
	}
	return "", false
}

// Clear deletes records in dependency order inside one transaction. A
// failure part way rolls back every deletion.
func Clear(ctx context.Context, runner netbox.TxRunner, scope Scope, logger logging.Logger) ([]Deleted, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Component("seed"), logging.String("scope", scope.String()))
	timer := logging.StartTimer(logger, "records cleared")

	var out []Deleted
	err := runner.WithTx(ctx, func(w netbox.Writer) error {
		out = out[:0]
		for _, kind := range netbox.DeletionOrder {
			prefix, ok := scope.prefix(kind)
			if !ok {
				continue
			}
			n, err := w.Delete(ctx, kind, prefix)
			if err != nil {
				return fmt.Errorf("delete %s: %w", kind, err)
			}
			out = append(out, Deleted{Kind: kind, Count: n})
		}
		return nil
	})
	if err != nil {
		timer.EndError(err)
		return nil, fmt.Errorf("clear %s: %w", scope, err)
	}

	var total int64
	for _, d := range out {
		total += d.Count
	}
	timer.End(logging.Int64("deleted", total))
	return out, nil
}
