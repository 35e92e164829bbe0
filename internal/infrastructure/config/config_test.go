package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.Equal(t, "auction.transitions", cfg.Redis.Channel)
	assert.Equal(t, time.Minute, cfg.Sweep.Interval)
	assert.Equal(t, 9091, cfg.Metrics.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DMX_DATABASE_URL", "postgres://db.internal:5432/auctions")
	t.Setenv("DMX_REDIS_CHANNEL", "auction.events")
	t.Setenv("DMX_METRICS_PORT", "9200")
	t.Setenv("DMX_SWEEP_INTERVAL", "30s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://db.internal:5432/auctions", cfg.Database.URL)
	assert.Equal(t, "auction.events", cfg.Redis.Channel)
	assert.Equal(t, 9200, cfg.Metrics.Port)
	assert.Equal(t, 30*time.Second, cfg.Sweep.Interval)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
environment: staging
database:
  max_conns: 10
sweep:
  interval: 5m
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 10, cfg.Database.MaxConns)
	assert.Equal(t, 5*time.Minute, cfg.Sweep.Interval)
	// Untouched keys keep their defaults.
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv("DMX_METRICS_PORT", "70000")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating config")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
