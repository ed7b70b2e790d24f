package api

import (
	"github.com/dd0wney/cluso-netcanvas/pkg/api/middleware"
	"github.com/dd0wney/cluso-netcanvas/pkg/config"
	"github.com/dd0wney/cluso-netcanvas/pkg/topology"
)

// SetCORSConfig sets the CORS configuration for the server
func (s *Server) SetCORSConfig(cfg *middleware.CORSConfig) {
	s.corsConfig = cfg
}

// dashboardDefaults turns the topology section of the configuration into
// the options applied to every dashboard extraction
func dashboardDefaults(cfg config.TopologyConfig) (topology.Options, error) {
	var opts topology.Options
	if cfg.Grouping != "" {
		mode, err := topology.ParseGroupMode(cfg.Grouping)
		if err != nil {
			return opts, err
		}
		opts.Grouping = mode
	}
	opts.Layout = cfg.Layout
	opts.Synthesize = cfg.Synthesize
	return opts, nil
}

// withDefaults applies the configured grouping, layout and synthesis to a preset
func (s *Server) withDefaults(opts topology.Options) topology.Options {
	if s.defaults.Grouping != "" {
		opts.Grouping = s.defaults.Grouping
	}
	opts.Layout = s.defaults.Layout
	opts.Synthesize = s.defaults.Synthesize
	return opts
}
