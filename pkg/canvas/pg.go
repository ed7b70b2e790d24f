package canvas

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps canvases in a table next to the NetBox schema
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore uses pool (usually shared with the NetBox reader) and creates
// the canvas table when missing.
func NewPGStore(ctx context.Context, pool *pgxpool.Pool) (*PGStore, error) {
	s := &PGStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("canvas migration failed: %w", err)
	}
	return s, nil
}

func (s *PGStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS netcanvas_canvas (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description VARCHAR(200) NOT NULL DEFAULT '',
		topology_data JSONB NOT NULL DEFAULT '{}'::jsonb,
		created TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_netcanvas_canvas_name ON netcanvas_canvas(name);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

const canvasColumns = `id, name, description, topology_data, created, last_updated`

func scanCanvas(row pgx.Row) (*Canvas, error) {
	c := &Canvas{}
	var data []byte
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &data, &c.Created, &c.LastUpdated); err != nil {
		return nil, err
	}
	c.TopologyData = data
	return c, nil
}

func (s *PGStore) List(ctx context.Context) ([]Canvas, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+canvasColumns+` FROM netcanvas_canvas ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list canvases: %w", err)
	}
	defer rows.Close()

	var out []Canvas
	for rows.Next() {
		c, err := scanCanvas(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan canvas: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *PGStore) Get(ctx context.Context, id int64) (*Canvas, error) {
	c, err := scanCanvas(s.pool.QueryRow(ctx,
		`SELECT `+canvasColumns+` FROM netcanvas_canvas WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get canvas %d: %w", id, err)
	}
	return c, nil
}

func (s *PGStore) Create(ctx context.Context, in Input) (*Canvas, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	c, err := scanCanvas(s.pool.QueryRow(ctx, `
		INSERT INTO netcanvas_canvas (name, description, topology_data)
		VALUES ($1, $2, $3::jsonb)
		RETURNING `+canvasColumns,
		in.Name, in.Description, string(in.TopologyData)))
	if err != nil {
		return nil, fmt.Errorf("failed to create canvas: %w", err)
	}
	return c, nil
}

func (s *PGStore) Update(ctx context.Context, id int64, in Input) (*Canvas, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	c, err := scanCanvas(s.pool.QueryRow(ctx, `
		UPDATE netcanvas_canvas
		SET name = $2, description = $3, topology_data = $4::jsonb, last_updated = now()
		WHERE id = $1
		RETURNING `+canvasColumns,
		id, in.Name, in.Description, string(in.TopologyData)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update canvas %d: %w", id, err)
	}
	return c, nil
}

func (s *PGStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM netcanvas_canvas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete canvas %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM netcanvas_canvas`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count canvases: %w", err)
	}
	return n, nil
}
