// Package canvas persists saved network canvases: named topology snapshots
// with their layout data.
package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-netcanvas/pkg/validation"
)

var (
	// ErrNotFound is returned when no canvas has the requested id
	ErrNotFound = errors.New("canvas not found")
	// ErrInvalid wraps every input validation failure
	ErrInvalid = errors.New("invalid canvas")
)

// Canvas is a saved topology with layout data
type Canvas struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	TopologyData json.RawMessage `json:"topology_data"`
	Created      time.Time       `json:"created"`
	LastUpdated  time.Time       `json:"last_updated"`
}

// Input carries the writable fields of a canvas
type Input struct {
	Name         string          `json:"name" validate:"required,max=100"`
	Description  string          `json:"description" validate:"max=200"`
	TopologyData json.RawMessage `json:"topology_data"`
}

// Normalize validates the input and defaults TopologyData to {}.
// Every failure wraps ErrInvalid.
func (in *Input) Normalize() error {
	if err := validation.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	data := bytes.TrimSpace(in.TopologyData)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		in.TopologyData = json.RawMessage(`{}`)
		return nil
	}
	if data[0] != '{' || !json.Valid(data) {
		return fmt.Errorf("%w: topology_data: must be a JSON object", ErrInvalid)
	}
	in.TopologyData = json.RawMessage(data)
	return nil
}

// Store persists canvases
type Store interface {
	List(ctx context.Context) ([]Canvas, error)
	Get(ctx context.Context, id int64) (*Canvas, error)
	Create(ctx context.Context, in Input) (*Canvas, error)
	Update(ctx context.Context, id int64, in Input) (*Canvas, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}
