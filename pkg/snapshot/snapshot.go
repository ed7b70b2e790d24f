// Package snapshot writes and reads offline copies of NetBox data. A
// snapshot is a snappy framed stream holding two JSON documents: a Header
// and the netbox.Dataset it describes.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
)

const (
	Format  = "netcanvas-snapshot"
	Version = 1

	// Extension is the conventional file suffix
	Extension = ".ncsnap"
)

// ErrFormat is returned for streams that are not snapshots this package can read
var ErrFormat = errors.New("not a netcanvas snapshot")

type Header struct {
	Format    string              `json:"format"`
	Version   int                 `json:"version"`
	CreatedAt time.Time           `json:"created_at"`
	Shape     netbox.SchemaShape  `json:"shape,omitempty"`
	Counts    map[netbox.Kind]int `json:"counts"`
}

// Export captures r and writes it to w
func Export(ctx context.Context, r netbox.Reader, w io.Writer) (*Header, error) {
	ds, err := netbox.Capture(ctx, r)
	if err != nil {
		return nil, err
	}
	return Write(w, ds)
}

// Write encodes ds to w
func Write(w io.Writer, ds *netbox.Dataset) (*Header, error) {
	h := &Header{
		Format:    Format,
		Version:   Version,
		CreatedAt: time.Now().UTC(),
		Shape:     ds.Shape,
		Counts:    ds.Summary(),
	}

	sw := snappy.NewBufferedWriter(w)
	enc := json.NewEncoder(sw)
	if err := enc.Encode(h); err != nil {
		return nil, fmt.Errorf("failed to write snapshot header: %w", err)
	}
	if err := enc.Encode(ds); err != nil {
		return nil, fmt.Errorf("failed to write snapshot data: %w", err)
	}
	if err := sw.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return h, nil
}

// Read decodes a snapshot written by Write
func Read(r io.Reader) (*Header, *netbox.Dataset, error) {
	dec := json.NewDecoder(snappy.NewReader(r))

	var h Header
	if err := dec.Decode(&h); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if h.Format != Format {
		return nil, nil, fmt.Errorf("%w: format %q", ErrFormat, h.Format)
	}
	if h.Version > Version {
		return nil, nil, fmt.Errorf("%w: version %d is newer than %d", ErrFormat, h.Version, Version)
	}

	var ds netbox.Dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, nil, fmt.Errorf("failed to read snapshot data: %w", err)
	}
	got := ds.Summary()
	for kind, want := range h.Counts {
		if got[kind] != want {
			return nil, nil, fmt.Errorf("snapshot truncated: header lists %d %s, data has %d", want, kind, got[kind])
		}
	}
	return &h, &ds, nil
}

// Import reads a snapshot into a MemoryStore
func Import(r io.Reader) (*netbox.MemoryStore, error) {
	_, ds, err := Read(r)
	if err != nil {
		return nil, err
	}
	return netbox.NewMemoryStore(ds), nil
}
