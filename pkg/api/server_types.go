package api

import (
	"html/template"
	"net/http"
	"time"

	"github.com/dd0wney/cluso-netcanvas/pkg/api/middleware"
	"github.com/dd0wney/cluso-netcanvas/pkg/auth"
	"github.com/dd0wney/cluso-netcanvas/pkg/canvas"
	"github.com/dd0wney/cluso-netcanvas/pkg/config"
	"github.com/dd0wney/cluso-netcanvas/pkg/graphql"
	"github.com/dd0wney/cluso-netcanvas/pkg/health"
	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
	"github.com/dd0wney/cluso-netcanvas/pkg/metrics"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
	"github.com/dd0wney/cluso-netcanvas/pkg/topology"
)

// Server represents the HTTP API server
type Server struct {
	store           netbox.Store
	extractor       *topology.Extractor
	canvases        canvas.Store
	graphqlHandler  *graphql.GraphQLHandler
	metricsRegistry *metrics.Registry
	healthChecker   *health.HealthChecker
	tokenValidator  auth.TokenValidator          // nil when auth is disabled
	corsConfig      *middleware.CORSConfig       // CORS configuration for cross-origin requests
	rateLimiter     *middleware.RateLimiter      // nil when rate limiting is disabled
	clientIPs       *middleware.ClientIPResolver // resolves client addresses behind trusted proxies
	templates       *template.Template
	config          config.ServerConfig
	defaults        topology.Options // dashboard grouping, layout and synthesis
	logger          logging.Logger
	httpServer      *http.Server
	startTime       time.Time
	version         string
	live            bool // backed by a database rather than a snapshot
}

// Deps are the collaborators a Server is built from
type Deps struct {
	Store    netbox.Store
	Canvases canvas.Store        // nil selects an in-memory store
	Metrics  *metrics.Registry   // nil selects metrics.DefaultRegistry
	Tokens   auth.TokenValidator // nil disables bearer auth
	Logger   logging.Logger
	Version  string
	// Live is true when Store is a database rather than a snapshot
	Live bool
}
