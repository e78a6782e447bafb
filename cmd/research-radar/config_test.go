// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-radar/internal/store"
	"github.com/pdiddy/research-radar/pkg/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "research-radar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	c, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, types.DriverSQLite, c.Store.Driver)
	assert.Equal(t, store.DefaultPath, c.Store.Path)
	assert.Equal(t, 30*time.Second, c.Sources.HTTP.Timeout)
	assert.Equal(t, 3, c.Sources.Retry.MaxRetries)
	assert.True(t, c.Sources.Arxiv.Enabled)
	assert.Equal(t, defaultArxivURL, c.Sources.Arxiv.BaseURL)
	assert.Equal(t, 10, c.Sources.GitHub.MaxResults)
	assert.InDelta(t, 0.5, c.Sources.GitHub.RatePerSecond, 1e-9)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "info", c.Log.Level)
}

func TestConfigureViperReadsFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
store:
  driver: SQLite
  path: /tmp/radar.db
sources:
  http:
    timeout: 5s
  github:
    enabled: false
server:
  cors_origins:
    - http://localhost:5173
`)
	v := viper.New()
	used, err := configureViper(v, path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	c, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, types.DriverSQLite, c.Store.Driver, "driver is case-insensitive")
	assert.Equal(t, "/tmp/radar.db", c.Store.Path)
	assert.Equal(t, 5*time.Second, c.Sources.HTTP.Timeout)
	assert.False(t, c.Sources.GitHub.Enabled)
	assert.True(t, c.Sources.Arxiv.Enabled, "unset keys keep their defaults")
	assert.Equal(t, []string{"http://localhost:5173"}, c.Server.CORSOrigins)
}

func TestConfigureViperEnvOverride(t *testing.T) {
	t.Setenv("RESEARCH_RADAR_STORE_PATH", "/var/lib/radar.db")
	t.Setenv("RESEARCH_RADAR_SOURCES_ARXIV_MAX_RESULTS", "25")

	v := viper.New()
	_, err := configureViper(v, writeConfig(t, "store:\n  path: file.db\n"))
	require.NoError(t, err)

	c, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/radar.db", c.Store.Path)
	assert.Equal(t, 25, c.Sources.Arxiv.MaxResults)
}

func TestConfigureViperMissingExplicitFile(t *testing.T) {
	_, err := configureViper(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
	}{
		{"unknown driver", map[string]any{"store.driver": "mysql"}},
		{"postgres without dsn", map[string]any{"store.driver": "postgres"}},
		{"negative timeout", map[string]any{"sources.http.timeout": "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			setDefaults(v)
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := loadConfig(v)
			assert.Error(t, err)
		})
	}
}

func TestBindFlags(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("store-path", "", "")
	bindFlags(v, fs, map[string]string{"store.path": "store-path", "store.dsn": "missing"})

	c, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, store.DefaultPath, c.Store.Path, "an unset flag keeps the default")

	require.NoError(t, fs.Parse([]string{"--store-path", "flag.db"}))
	c, err = loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "flag.db", c.Store.Path)
}
