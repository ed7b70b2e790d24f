package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox/netboxtest"
)

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	store := netboxtest.NewCampus().Store()

	var buf bytes.Buffer
	h, err := Export(ctx, store, &buf)
	require.NoError(t, err)
	assert.Equal(t, Format, h.Format)
	assert.Equal(t, 6, h.Counts[netbox.KindDevice])
	assert.Equal(t, 5, h.Counts[netbox.KindCable])

	imported, err := Import(&buf)
	require.NoError(t, err)
	assert.Equal(t, store.Dataset(), imported.Dataset())

	counts, err := imported.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, counts.Devices)
	assert.Equal(t, 5, counts.Cables)
}

func TestReadRejectsForeignStreams(t *testing.T) {
	_, _, err := Read(bytes.NewReader([]byte("plain json is not framed")))
	assert.ErrorIs(t, err, ErrFormat)

	var buf bytes.Buffer
	sw := snappy.NewBufferedWriter(&buf)
	_, err = sw.Write([]byte(`{"format":"other","version":1}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, sw.Close())
	_, _, err = Read(&buf)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestReadRejectsNewerVersion(t *testing.T) {
	var buf bytes.Buffer
	sw := snappy.NewBufferedWriter(&buf)
	_, err := sw.Write([]byte(`{"format":"netcanvas-snapshot","version":99}` + "\n{}\n"))
	require.NoError(t, err)
	require.NoError(t, sw.Close())

	_, _, err = Read(&buf)
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorContains(t, err, "version 99")
}

func TestReadDetectsCountMismatch(t *testing.T) {
	var buf bytes.Buffer
	sw := snappy.NewBufferedWriter(&buf)
	_, err := sw.Write([]byte(`{"format":"netcanvas-snapshot","version":1,"counts":{"devices":3}}` + "\n" + `{"devices":[]}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, sw.Close())

	_, _, err = Read(&buf)
	assert.ErrorContains(t, err, "header lists 3 devices")
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestPut(t *testing.T) {
	ctx := context.Background()
	putter := &fakePutter{}

	require.NoError(t, Put(ctx, putter, "snapshots", "campus"+Extension, bytes.NewReader([]byte("data"))))
	assert.Equal(t, "snapshots", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "campus.ncsnap", aws.ToString(putter.input.Key))
	assert.Equal(t, Format, putter.input.Metadata["format"])
	assert.Equal(t, "data", string(putter.body))

	putter.err = errors.New("access denied")
	err := Put(ctx, putter, "snapshots", "campus.ncsnap", bytes.NewReader(nil))
	assert.ErrorContains(t, err, "s3://snapshots/campus.ncsnap")
}
