// Package config loads netcanvas settings from a YAML file and NETCANVAS_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-netcanvas/pkg/layout"
	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
	"github.com/dd0wney/cluso-netcanvas/pkg/topology"
	"github.com/dd0wney/cluso-netcanvas/pkg/validation"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "NETCANVAS_"

// Config is the complete netcanvas configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Topology TopologyConfig `yaml:"topology"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int           `yaml:"max_body_bytes"`

	// RateLimit is requests per second per client; zero disables limiting
	RateLimit      float64  `yaml:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst"`
	TrustedProxies []string `yaml:"trusted_proxies"`
	CORSOrigins    []string `yaml:"cors_origins"`
}

// DatabaseConfig points at the NetBox PostgreSQL database
type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConns       int           `yaml:"max_conns"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// TopologyConfig sets extraction defaults for the dashboards
type TopologyConfig struct {
	Grouping   string `yaml:"grouping"`
	Layout     string `yaml:"layout"`
	Synthesize bool   `yaml:"synthesize"`
}

// AuthConfig enables bearer-token auth when JWTSecret is set
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// LoggingConfig selects the minimum log level
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SnapshotConfig locates offline snapshots and their S3 destination
type SnapshotConfig struct {
	Path            string `yaml:"path"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
			RateLimit:       20,
			RateBurst:       40,
		},
		Database: DatabaseConfig{
			MaxConns:       10,
			ConnectTimeout: 10 * time.Second,
		},
		Topology: TopologyConfig{
			Grouping: string(topology.GroupBySite),
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Snapshot: SnapshotConfig{
			Region: "us-east-1",
		},
	}
}

// Load reads path (when non-empty) over the defaults, then applies the
// environment, then validates.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(EnvPrefix + key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = splitList(v)
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	str("ADDR", &cfg.Server.Addr)
	dur("READ_TIMEOUT", &cfg.Server.ReadTimeout)
	dur("WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	float("RATE_LIMIT", &cfg.Server.RateLimit)
	num("RATE_BURST", &cfg.Server.RateBurst)
	list("TRUSTED_PROXIES", &cfg.Server.TrustedProxies)
	list("CORS_ORIGINS", &cfg.Server.CORSOrigins)
	str("DATABASE_URL", &cfg.Database.URL)
	num("MAX_CONNS", &cfg.Database.MaxConns)
	str("GROUPING", &cfg.Topology.Grouping)
	str("LAYOUT", &cfg.Topology.Layout)
	flag("SYNTHESIZE", &cfg.Topology.Synthesize)
	str("JWT_SECRET", &cfg.Auth.JWTSecret)
	dur("TOKEN_TTL", &cfg.Auth.TokenTTL)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("SNAPSHOT", &cfg.Snapshot.Path)
	str("S3_BUCKET", &cfg.Snapshot.Bucket)
	str("S3_REGION", &cfg.Snapshot.Region)
	str("S3_ENDPOINT", &cfg.Snapshot.Endpoint)
	str("S3_ACCESS_KEY_ID", &cfg.Snapshot.AccessKeyID)
	str("S3_SECRET_ACCESS_KEY", &cfg.Snapshot.SecretAccessKey)
	flag("S3_PATH_STYLE", &cfg.Snapshot.UsePathStyle)

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks every section and returns all problems at once
func (c *Config) Validate() error {
	return errors.Join(
		validation.NewConfigValidator("server").
			Required("addr", c.Server.Addr).
			MinDuration("read_timeout", c.Server.ReadTimeout, time.Second).
			MinDuration("write_timeout", c.Server.WriteTimeout, time.Second).
			Positive("max_body_bytes", c.Server.MaxBodyBytes).
			Custom("rate_limit", func() error {
				if c.Server.RateLimit < 0 {
					return errors.New("must not be negative")
				}
				return nil
			}).
			When(c.Server.RateLimit > 0, func(v *validation.ConfigValidator) {
				v.Positive("rate_burst", c.Server.RateBurst)
			}).
			Validate(),
		validation.NewConfigValidator("database").
			URLScheme("url", c.Database.URL, "postgres", "postgresql").
			RangeInt("max_conns", c.Database.MaxConns, 1, 100).
			Validate(),
		validation.NewConfigValidator("topology").
			OneOf("grouping", c.Topology.Grouping, []string{string(topology.GroupBySite), string(topology.GroupBySiteName)}).
			When(c.Topology.Layout != "", func(v *validation.ConfigValidator) {
				v.OneOf("layout", c.Topology.Layout, layout.Algorithms)
			}).
			Validate(),
		validation.NewConfigValidator("auth").
			MinLen("jwt_secret", c.Auth.JWTSecret, 32).
			When(c.Auth.JWTSecret != "", func(v *validation.ConfigValidator) {
				v.MinDuration("token_ttl", c.Auth.TokenTTL, time.Minute)
			}).
			Validate(),
		validation.NewConfigValidator("logging").
			OneOf("level", strings.ToLower(c.Logging.Level), []string{"debug", "info", "warn", "warning", "error"}).
			Validate(),
	)
}

// RequireSource checks that a database URL or a snapshot path is set
func (c *Config) RequireSource() error {
	if c.Database.URL == "" && c.Snapshot.Path == "" {
		return errors.New("no data source: set database.url (" + EnvPrefix + "DATABASE_URL) or snapshot.path (" + EnvPrefix + "SNAPSHOT)")
	}
	return nil
}

// RequireBucket checks the S3 settings needed for snapshot upload
func (c *Config) RequireBucket() error {
	return validation.NewConfigValidator("snapshot").
		Required("bucket", c.Snapshot.Bucket).
		Required("region", c.Snapshot.Region).
		When(c.Snapshot.AccessKeyID != "", func(v *validation.ConfigValidator) {
			v.Required("secret_access_key", c.Snapshot.SecretAccessKey)
		}).
		Validate()
}

// LogLevel returns the configured logging level
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

// Redacted returns a copy safe to log
func (c *Config) Redacted() Config {
	out := *c
	if out.Auth.JWTSecret != "" {
		out.Auth.JWTSecret = "***"
	}
	if out.Snapshot.SecretAccessKey != "" {
		out.Snapshot.SecretAccessKey = "***"
	}
	if i := strings.Index(out.Database.URL, "@"); i > 0 {
		if j := strings.Index(out.Database.URL, "://"); j > 0 && j < i {
			out.Database.URL = out.Database.URL[:j+3] + "***" + out.Database.URL[i:]
		}
	}
	return out
}
