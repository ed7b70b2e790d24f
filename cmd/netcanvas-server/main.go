package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/cluso-netcanvas/pkg/api"
	"github.com/dd0wney/cluso-netcanvas/pkg/auth"
	"github.com/dd0wney/cluso-netcanvas/pkg/canvas"
	"github.com/dd0wney/cluso-netcanvas/pkg/config"
	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
	"github.com/dd0wney/cluso-netcanvas/pkg/metrics"
	"github.com/dd0wney/cluso-netcanvas/pkg/source"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configPath := flag.String("config", os.Getenv(config.EnvPrefix+"CONFIG"), "YAML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	snapshotPath := flag.String("snapshot", "", "serve a snapshot file instead of the database")
	flag.Parse()

	// Library messages that go through log/slog
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(*configPath, *addr, *snapshotPath); err != nil {
		slog.Error("netcanvas server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, addr, snapshotPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if snapshotPath != "" {
		cfg.Database.URL = ""
		cfg.Snapshot.Path = snapshotPath
	}

	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel())
	redacted := cfg.Redacted()
	logger.Info("netcanvas server starting",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr),
		logging.String("database", redacted.Database.URL),
		logging.String("snapshot", cfg.Snapshot.Path),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := source.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	registry := metrics.DefaultRegistry()
	if !src.Live {
		registry.RecordSnapshot("load", src.Bytes)
	}
	deps := api.Deps{
		Store:   source.Instrument(src.Store, registry),
		Metrics: registry,
		Logger:  logger,
		Version: version,
		Live:    src.Live,
	}
	if src.PG != nil {
		canvases, err := canvas.NewPGStore(ctx, src.PG.Pool())
		if err != nil {
			return err
		}
		deps.Canvases = canvases
	}
	if cfg.Auth.JWTSecret != "" {
		tokens, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			return err
		}
		deps.Tokens = tokens
	}

	server, err := api.NewServer(cfg, deps)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", logging.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if err := <-errCh; err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}
