package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dd0wney/cluso-netcanvas/pkg/config"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
	"github.com/dd0wney/cluso-netcanvas/pkg/snapshot"
)

func runSnapshot(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("snapshot needs a subcommand: export, import or upload")
	}
	switch args[0] {
	case "export":
		return runSnapshotExport(ctx, args[1:])
	case "import":
		return runSnapshotImport(ctx, args[1:])
	case "upload":
		return runSnapshotUpload(ctx, args[1:])
	}
	return fmt.Errorf("unknown snapshot subcommand %q", args[0])
}

func runSnapshotExport(ctx context.Context, args []string) error {
	fs := newFlagSet("snapshot export")
	var src sourceFlags
	src.register(fs)
	out := fs.String("out", "netbox"+snapshot.Extension, "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, _, err := src.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	// Written beside the target, then renamed into place
	tmp, err := os.CreateTemp(filepath.Dir(*out), ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	h, err := snapshot.Export(ctx, s.Store, tmp)
	if err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), *out); err != nil {
		return err
	}

	info, err := os.Stat(*out)
	if err != nil {
		return err
	}
	fmt.Println(okStyle.Render("exported") + fmt.Sprintf(" %s (%d bytes)", *out, info.Size()))
	printHeader(h)
	return nil
}

func runSnapshotImport(ctx context.Context, args []string) error {
	fs := newFlagSet("snapshot import")
	in := fs.String("in", "", "snapshot file to read")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("--in is required")
	}

	f, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer f.Close()
	h, ds, err := snapshot.Read(f)
	if err != nil {
		return err
	}
	printHeader(h)
	return inspect(ctx, netbox.NewMemoryStore(ds), "snapshot "+*in, 10)
}

func runSnapshotUpload(ctx context.Context, args []string) error {
	fs := newFlagSet("snapshot upload")
	configPath := fs.String("config", os.Getenv(config.EnvPrefix+"CONFIG"), "YAML config file")
	in := fs.String("in", "", "snapshot file to upload")
	key := fs.String("key", "", "object key (default: file name)")
	bucket := fs.String("bucket", "", "S3 bucket (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("--in is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *bucket != "" {
		cfg.Snapshot.Bucket = *bucket
	}
	if err := cfg.RequireBucket(); err != nil {
		return err
	}
	if *key == "" {
		*key = filepath.Base(*in)
	}

	f, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer f.Close()
	// Reject files that are not snapshots before sending anything
	if _, _, err := snapshot.Read(f); err != nil {
		return err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	err = snapshot.Upload(ctx, snapshot.S3Config{
		Bucket:          cfg.Snapshot.Bucket,
		Region:          cfg.Snapshot.Region,
		Endpoint:        cfg.Snapshot.Endpoint,
		AccessKeyID:     cfg.Snapshot.AccessKeyID,
		SecretAccessKey: cfg.Snapshot.SecretAccessKey,
		UsePathStyle:    cfg.Snapshot.UsePathStyle,
	}, *key, f)
	if err != nil {
		return err
	}
	fmt.Println(okStyle.Render("uploaded") + fmt.Sprintf(" s3://%s/%s", cfg.Snapshot.Bucket, *key))
	return nil
}

func printHeader(h *snapshot.Header) {
	fmt.Printf("  %s v%d, created %s\n", h.Format, h.Version, h.CreatedAt.Format(time.RFC3339))
	for _, kind := range netbox.DeletionOrder {
		if n := h.Counts[kind]; n > 0 {
			fmt.Printf("  %-22s %d\n", kind, n)
		}
	}
}
