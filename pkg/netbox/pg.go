package netbox

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions tunes the PostgreSQL connection pool
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultPoolOptions is sized for a read-mostly dashboard service
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxConns:        10,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: time.Minute,
	}
}

// PGStore reads (and, for seeding, writes) a NetBox PostgreSQL database
type PGStore struct {
	pool       *pgxpool.Pool
	shape      SchemaShape
	roleColumn string
}

// NewPGStore connects to the NetBox database and inspects its schema once
func NewPGStore(ctx context.Context, databaseURL string, opts PoolOptions) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		config.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PGStore{pool: pool}
	if err := s.inspect(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("schema inspection failed: %w", err)
	}
	return s, nil
}

// inspect records the cable termination layout and the device role column,
// which was renamed from device_role_id to role_id in NetBox 4.0.
func (s *PGStore) inspect(ctx context.Context) error {
	var hasTerminations bool
	err := s.pool.QueryRow(ctx,
		`SELECT to_regclass('dcim_cabletermination') IS NOT NULL`).Scan(&hasTerminations)
	if err != nil {
		return err
	}
	if hasTerminations {
		s.shape = ShapeCableTermination
	} else {
		s.shape = ShapeLegacy
	}

	err = s.pool.QueryRow(ctx, `
		SELECT column_name FROM information_schema.columns
		WHERE table_name = 'dcim_device' AND column_name IN ('role_id', 'device_role_id')
		ORDER BY column_name DESC
		LIMIT 1`).Scan(&s.roleColumn)
	if err != nil {
		return fmt.Errorf("dcim_device role column: %w", err)
	}
	return nil
}

// Pool exposes the connection pool so other stores can share it
func (s *PGStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *PGStore) Shape() SchemaShape {
	return s.shape
}

// Ping checks database connectivity
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

// WithTx runs fn in one database transaction
func (s *PGStore) WithTx(ctx context.Context, fn func(w Writer) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SET CONSTRAINTS ALL DEFERRED"); err != nil {
			return fmt.Errorf("defer constraints: %w", err)
		}
		return fn(&pgWriter{tx: tx, shape: s.shape, roleColumn: s.roleColumn})
	})
}

// limitArg turns a non-positive limit into NULL, which Postgres treats as
// no limit.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
