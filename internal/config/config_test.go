package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no stray config.yaml
// or .env is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		dotenv      string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultPort, cfg.Server.Port)
				assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.Server.MaxUploadBytes)
				assert.Equal(t, DefaultCacheTTL, cfg.Cache.TTL)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
			},
		},
		{
			name: "yaml file overrides defaults",
			file: `
server:
  port: 9090
  read_timeout: 5s
cache:
  ttl: 10m
  max_entries: 4
report:
  title: Итоги
  prune_columns: true
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
				assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
				assert.Equal(t, 4, cfg.Cache.MaxEntries)
				assert.Equal(t, "Итоги", cfg.Report.Title)
				assert.True(t, cfg.Report.PruneColumns)
			},
		},
		{
			name: "environment overrides file",
			file: "server:\n  port: 9090\n",
			env: map[string]string{
				"CR_SERVER_PORT":                 "7070",
				"CR_SESSION_IDLE_TTL":            "15m",
				"CR_LOGGING_LEVEL":               "debug",
				"CR_SECURITY_RATE_LIMIT_ENABLED": "false",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 15*time.Minute, cfg.Session.IdleTTL)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.False(t, cfg.Security.RateLimit.Enabled)
			},
		},
		{
			name:   "dotenv file",
			dotenv: "CR_REPORT_SHEET=Data\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "Data", cfg.Report.Sheet)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"CR_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"CR_CACHE_TTL": "soon"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := chdirTemp(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.dotenv != "" {
				writeFile(t, filepath.Join(dir, ".env"), tt.dotenv)
				t.Cleanup(func() { os.Unsetenv("CR_REPORT_SHEET") })
			}
			if tt.file != "" {
				t.Setenv(ConfigFileEnv, writeFile(t, filepath.Join(dir, "custom.yaml"), tt.file))
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	chdirTemp(t)
	_, err := LoadFrom("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestGetConfigFilePath(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv(ConfigFileEnv, "")

	assert.Equal(t, "", getConfigFilePath())

	writeFile(t, filepath.Join(dir, "config.yaml"), "server:\n  port: 8081\n")
	assert.Equal(t, "config.yaml", getConfigFilePath())

	t.Setenv(ConfigFileEnv, "/etc/coursereport.yaml")
	assert.Equal(t, "/etc/coursereport.yaml", getConfigFilePath())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid default", func(*Config) {}, ""},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "read timeout"},
		{"zero upload size", func(c *Config) { c.Server.MaxUploadBytes = 0 }, "max upload size"},
		{"bad rate limit", func(c *Config) { c.Security.RateLimit.RPS = 0 }, "rate limit"},
		{"disabled rate limit ignores values", func(c *Config) {
			c.Security.RateLimit.Enabled = false
			c.Security.RateLimit.RPS = 0
		}, ""},
		{"empty cache", func(c *Config) { c.Cache.MaxEntries = 0 }, "at least one dataset"},
		{"zero session ttl", func(c *Config) { c.Session.IdleTTL = 0 }, "session idle ttl"},
		{"bad output", func(c *Config) { c.Logging.Output = "syslog" }, "invalid logging output"},
		{"file output without path", func(c *Config) {
			c.Logging.Output = "file"
			c.Logging.FilePath = ""
		}, "file path is required"},
		{"bad trace exporter", func(c *Config) { c.Telemetry.TraceExporter = "otlp" }, "unsupported trace exporter"},
		{"bad metric exporter", func(c *Config) { c.Telemetry.MetricExporter = "statsd" }, "unsupported metric exporter"},
		{"bad sample ratio", func(c *Config) { c.Telemetry.SampleRatio = 2 }, "sample ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ForcesJSONFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestAddress(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Address())

	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 9000
	assert.Equal(t, "127.0.0.1:9000", cfg.Address())
}
