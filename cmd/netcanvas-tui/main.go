package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-netcanvas/pkg/config"
	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
	"github.com/dd0wney/cluso-netcanvas/pkg/source"
	"github.com/dd0wney/cluso-netcanvas/pkg/topology"
)

func main() {
	configPath := flag.String("config", os.Getenv(config.EnvPrefix+"CONFIG"), "YAML config file")
	database := flag.String("database", "", "NetBox database URL (overrides config)")
	snapshotPath := flag.String("snapshot", "", "browse a snapshot file instead of the database")
	preset := flag.String("preset", "enhanced", "extraction preset: dashboard or enhanced")
	logPath := flag.String("log", "", "write JSON logs to this file")
	timeout := flag.Duration("timeout", 30*time.Second, "extraction timeout")
	flag.Parse()

	if err := run(*configPath, *database, *snapshotPath, *preset, *logPath, *timeout); err != nil {
		log.Fatalf("netcanvas-tui: %v", err)
	}
}

func run(configPath, database, snapshotPath, preset, logPath string, timeout time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if database != "" {
		cfg.Database.URL = database
	}
	if snapshotPath != "" {
		cfg.Database.URL = ""
		cfg.Snapshot.Path = snapshotPath
	}
	opts, err := topology.Preset(preset, 0)
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal, so logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := logging.NewJSONLogger(logOut, cfg.LogLevel()).With(logging.Component("tui"))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	src, err := source.Open(ctx, cfg, logger)
	cancel()
	if err != nil {
		return err
	}
	defer src.Close()

	extractor := topology.NewExtractor(src.Store, logger)
	load := func(ctx context.Context) (*topology.Result, error) {
		return extractor.Extract(ctx, opts)
	}

	p := tea.NewProgram(initialModel(load, src.Desc, opts.Name, timeout), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
