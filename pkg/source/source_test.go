package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netcanvas/pkg/config"
	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox/netboxtest"
	"github.com/dd0wney/cluso-netcanvas/pkg/snapshot"
)

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "campus"+snapshot.Extension)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = snapshot.Write(f, netboxtest.NewCampus().Dataset())
	require.NoError(t, err)
	return path
}

func TestOpenSnapshot(t *testing.T) {
	cfg := config.Default()
	cfg.Snapshot.Path = writeSnapshot(t)

	src, err := Open(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	defer src.Close()

	assert.False(t, src.Live)
	assert.Nil(t, src.PG)
	counts, err := src.Store.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, counts.Devices)

	_, err = src.TxRunner()
	assert.ErrorIs(t, err, netbox.ErrReadOnly)
}

func TestOpenNeedsSource(t *testing.T) {
	_, err := Open(context.Background(), config.Default(), logging.NewNopLogger())
	assert.ErrorContains(t, err, "no data source")
}

func TestOpenSnapshotMissingFile(t *testing.T) {
	_, err := OpenSnapshot(filepath.Join(t.TempDir(), "missing"), logging.NewNopLogger())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type recorder struct {
	calls map[string]string
}

func (r *recorder) RecordStoreQuery(operation, status string, _ time.Duration) {
	r.calls[operation] = status
}

func TestInstrument(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{calls: make(map[string]string)}
	store := Instrument(netboxtest.NewCampus().Store(), rec)

	set, err := store.ListDevices(ctx, netbox.DeviceFilter{})
	require.NoError(t, err)
	assert.Len(t, set.Devices, 6)
	_, err = store.Counts(ctx)
	require.NoError(t, err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.ListCables(canceled, 0)
	require.Error(t, err)

	assert.Equal(t, map[string]string{
		"list_devices": "success",
		"counts":       "success",
		"list_cables":  "error",
	}, rec.calls)
}
