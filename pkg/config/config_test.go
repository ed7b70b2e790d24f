package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "netcanvas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg, err := load("", env(nil))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "site", cfg.Topology.Grouping)
	assert.Equal(t, logging.InfoLevel, cfg.LogLevel())
	assert.Error(t, cfg.RequireSource())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, `
server:
  addr: ":9090"
  read_timeout: 5s
database:
  url: postgres://netbox:secret@db:5432/netbox
  max_conns: 4
topology:
  grouping: site_name
  layout: hierarchical
  synthesize: true
logging:
  level: debug
`)

	cfg, err := load(path, env(nil))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, 4, cfg.Database.MaxConns)
	assert.Equal(t, "site_name", cfg.Topology.Grouping)
	assert.Equal(t, "hierarchical", cfg.Topology.Layout)
	assert.True(t, cfg.Topology.Synthesize)
	assert.Equal(t, logging.DebugLevel, cfg.LogLevel())
	assert.NoError(t, cfg.RequireSource())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "server:\n  addr: \":9090\"\n")

	cfg, err := load(path, env(map[string]string{
		"NETCANVAS_ADDR":            ":7070",
		"NETCANVAS_DATABASE_URL":    "postgresql://db/netbox",
		"NETCANVAS_MAX_CONNS":       "20",
		"NETCANVAS_SYNTHESIZE":      "true",
		"NETCANVAS_JWT_SECRET":      strings.Repeat("k", 32),
		"NETCANVAS_TOKEN_TTL":       "2h",
		"NETCANVAS_SNAPSHOT":        "/var/lib/netcanvas/latest.snap",
		"NETCANVAS_RATE_LIMIT":      "2.5",
		"NETCANVAS_TRUSTED_PROXIES": "10.0.0.0/8, ,192.168.1.1",
		"NETCANVAS_CORS_ORIGINS":    "https://netbox.example.com",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "postgresql://db/netbox", cfg.Database.URL)
	assert.Equal(t, 20, cfg.Database.MaxConns)
	assert.True(t, cfg.Topology.Synthesize)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "/var/lib/netcanvas/latest.snap", cfg.Snapshot.Path)
	assert.Equal(t, 2.5, cfg.Server.RateLimit)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.Server.TrustedProxies)
	assert.Equal(t, []string{"https://netbox.example.com"}, cfg.Server.CORSOrigins)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{"bad yaml", "server: [", nil, "parse config"},
		{"bad duration", "server:\n  read_timeout: soon\n", nil, "parse config"},
		{"bad env int", "", map[string]string{"NETCANVAS_MAX_CONNS": "many"}, "NETCANVAS_MAX_CONNS"},
		{"bad env bool", "", map[string]string{"NETCANVAS_SYNTHESIZE": "sometimes"}, "NETCANVAS_SYNTHESIZE"},
		{"mysql url", "", map[string]string{"NETCANVAS_DATABASE_URL": "mysql://db"}, "database.url"},
		{"unknown grouping", "topology:\n  grouping: rack\n", nil, "topology.grouping"},
		{"unknown layout", "topology:\n  layout: spiral\n", nil, "topology.layout"},
		{"short secret", "", map[string]string{"NETCANVAS_JWT_SECRET": "short"}, "auth.jwt_secret"},
		{"bad level", "logging:\n  level: loud\n", nil, "logging.level"},
		{"too many conns", "database:\n  max_conns: 500\n", nil, "database.max_conns"},
		{"negative rate", "", map[string]string{"NETCANVAS_RATE_LIMIT": "-1"}, "server.rate_limit"},
		{"rate without burst", "server:\n  rate_burst: 0\n", nil, "server.rate_burst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}
			_, err := load(path, env(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateReportsEverySection(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ""
	cfg.Topology.Grouping = "rack"
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"server.addr", "topology.grouping", "logging.level"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestRequireBucket(t *testing.T) {
	cfg := Default()
	assert.ErrorContains(t, cfg.RequireBucket(), "snapshot.bucket")

	cfg.Snapshot.Bucket = "netcanvas-snapshots"
	assert.NoError(t, cfg.RequireBucket())

	cfg.Snapshot.AccessKeyID = "AKIA"
	assert.ErrorContains(t, cfg.RequireBucket(), "snapshot.secret_access_key")
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Database.URL = "postgres://netbox:hunter2@db:5432/netbox"
	cfg.Auth.JWTSecret = strings.Repeat("s", 40)
	cfg.Snapshot.SecretAccessKey = "abc"

	r := cfg.Redacted()
	assert.Equal(t, "postgres://***@db:5432/netbox", r.Database.URL)
	assert.Equal(t, "***", r.Auth.JWTSecret)
	assert.Equal(t, "***", r.Snapshot.SecretAccessKey)
	assert.Equal(t, strings.Repeat("s", 40), cfg.Auth.JWTSecret, "original untouched")
}
