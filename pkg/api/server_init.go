package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-netcanvas/pkg/api/middleware"
	"github.com/dd0wney/cluso-netcanvas/pkg/canvas"
	"github.com/dd0wney/cluso-netcanvas/pkg/config"
	"github.com/dd0wney/cluso-netcanvas/pkg/graphql"
	"github.com/dd0wney/cluso-netcanvas/pkg/health"
	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
	"github.com/dd0wney/cluso-netcanvas/pkg/metrics"
	"github.com/dd0wney/cluso-netcanvas/pkg/topology"
)

// NewServer creates a new API server over deps.Store, configured by cfg
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("api: a NetBox store is required")
	}
	if cfg == nil {
		cfg = config.Default()
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Component("api"))

	registry := deps.Metrics
	if registry == nil {
		registry = metrics.DefaultRegistry()
	}
	canvases := deps.Canvases
	if canvases == nil {
		canvases = canvas.NewMemoryStore()
		logger.Warn("saved canvases are kept in memory and lost on restart")
	}

	defaults, err := dashboardDefaults(cfg.Topology)
	if err != nil {
		return nil, err
	}

	extractor := topology.NewExtractor(deps.Store, logger, topology.WithRecorder(registry))

	schema, err := graphql.GenerateSchema(graphql.Deps{
		Extractor: extractor,
		Reader:    deps.Store,
		Canvases:  canvases,
		Defaults:  defaults,
	}, graphql.DefaultLimitConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to generate GraphQL schema: %w", err)
	}
	graphqlHandler, err := graphql.NewGraphQLHandler(schema, graphql.HandlerOptions{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL handler: %w", err)
	}

	clientIPs, err := middleware.NewClientIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.Server.RateLimit > 0 {
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.Server.RateLimit
		rl.BurstSize = cfg.Server.RateBurst
		rateLimiter = middleware.NewRateLimiter(rl)
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		corsConfig.AllowedOrigins = cfg.Server.CORSOrigins
		for _, o := range cfg.Server.CORSOrigins {
			if o == "*" {
				logger.Warn("CORS allows all origins")
				break
			}
		}
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	healthChecker := health.NewHealthChecker()
	healthChecker.RegisterLivenessCheck("api", health.SimpleCheck("api"))
	healthChecker.RegisterReadinessCheck("memory", health.MemoryCheck())
	healthChecker.RegisterReadinessCheck("database", health.DatabaseCheck(deps.Store.Ping))
	healthChecker.RegisterReadinessCheck("schema", health.SchemaCheck(func() string {
		return string(deps.Store.Shape())
	}, deps.Live))
	healthChecker.RegisterReadinessCheck("canvases", func(ctx context.Context) health.Check {
		check := health.Check{Name: "canvases", Status: health.StatusHealthy}
		if _, err := canvases.Count(ctx); err != nil {
			check.Status = health.StatusDegraded
			check.Message = err.Error()
		}
		return check
	})

	version := deps.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		store:           deps.Store,
		extractor:       extractor,
		canvases:        canvases,
		graphqlHandler:  graphqlHandler,
		metricsRegistry: registry,
		healthChecker:   healthChecker,
		tokenValidator:  deps.Tokens,
		corsConfig:      corsConfig,
		rateLimiter:     rateLimiter,
		clientIPs:       clientIPs,
		templates:       templates,
		config:          cfg.Server,
		defaults:        defaults,
		logger:          logger,
		startTime:       time.Now(),
		version:         version,
		live:            deps.Live,
	}
	if deps.Tokens == nil {
		logger.Info("bearer auth disabled")
	}
	return s, nil
}
