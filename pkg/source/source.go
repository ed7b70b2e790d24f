// Package source opens the NetBox data the binaries work from: the live
// database when one is configured, otherwise a snapshot file.
package source

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dd0wney/cluso-netcanvas/pkg/config"
	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
	"github.com/dd0wney/cluso-netcanvas/pkg/snapshot"
)

// Source is an opened store. PG is nil unless Live.
type Source struct {
	Store netbox.Store
	PG    *netbox.PGStore
	Live  bool
	Desc  string
	// Bytes is the snapshot file size
	Bytes int64
}

// Close releases the store
func (s *Source) Close() error {
	return s.Store.Close()
}

// TxRunner returns the store as a transaction runner, or ErrReadOnly for
// snapshot data
func (s *Source) TxRunner() (netbox.TxRunner, error) {
	if s.PG == nil {
		return nil, fmt.Errorf("%s: %w", s.Desc, netbox.ErrReadOnly)
	}
	return s.PG, nil
}

// Open prefers cfg.Database.URL and falls back to cfg.Snapshot.Path
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Source, error) {
	if err := cfg.RequireSource(); err != nil {
		return nil, err
	}
	if cfg.Database.URL != "" {
		return OpenDatabase(ctx, cfg.Database, logger)
	}
	return OpenSnapshot(cfg.Snapshot.Path, logger)
}

// OpenDatabase connects to NetBox and inspects its schema
func OpenDatabase(ctx context.Context, db config.DatabaseConfig, logger logging.Logger) (*Source, error) {
	opts := netbox.DefaultPoolOptions()
	if db.MaxConns > 0 {
		opts.MaxConns = int32(db.MaxConns)
	}
	if db.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.ConnectTimeout)
		defer cancel()
	}

	store, err := netbox.NewPGStore(ctx, db.URL, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to NetBox database",
		logging.String("shape", string(store.Shape())),
		logging.Int("max_conns", int(opts.MaxConns)),
	)
	return &Source{Store: store, PG: store, Live: true, Desc: "NetBox database"}, nil
}

// OpenSnapshot loads a snapshot file into memory
func OpenSnapshot(path string, logger logging.Logger) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}

	h, ds, err := snapshot.Read(f)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	logger.Info("loaded snapshot",
		logging.Path(path),
		logging.String("created_at", h.CreatedAt.Format(time.RFC3339)),
		logging.Count(h.Counts[netbox.KindDevice]),
	)
	return &Source{Store: netbox.NewMemoryStore(ds), Desc: "snapshot " + path, Bytes: info.Size()}, nil
}
