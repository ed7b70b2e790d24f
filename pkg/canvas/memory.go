package canvas

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps canvases in process. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	canvases map[int64]Canvas
	nextID   int64
	now      func() time.Time
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		canvases: make(map[int64]Canvas),
		nextID:   1,
		now:      time.Now,
	}
}

func clone(c Canvas) *Canvas {
	c.TopologyData = slices.Clone(c.TopologyData)
	return &c
}

// List returns every canvas ordered by id
func (s *MemoryStore) List(ctx context.Context) ([]Canvas, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Canvas, 0, len(s.canvases))
	for _, c := range s.canvases {
		out = append(out, *clone(c))
	}
	slices.SortFunc(out, func(a, b Canvas) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (*Canvas, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.canvases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(c), nil
}

func (s *MemoryStore) Create(ctx context.Context, in Input) (*Canvas, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	c := Canvas{
		ID:           s.nextID,
		Name:         in.Name,
		Description:  in.Description,
		TopologyData: in.TopologyData,
		Created:      now,
		LastUpdated:  now,
	}
	s.nextID++
	s.canvases[c.ID] = c
	return clone(c), nil
}

func (s *MemoryStore) Update(ctx context.Context, id int64, in Input) (*Canvas, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.canvases[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Name = in.Name
	c.Description = in.Description
	c.TopologyData = in.TopologyData
	c.LastUpdated = s.now().UTC()
	s.canvases[id] = c
	return clone(c), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.canvases[id]; !ok {
		return ErrNotFound
	}
	delete(s.canvases, id)
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.canvases), nil
}
