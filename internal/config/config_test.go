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
	t.Setenv("DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, "^NSEI", cfg.Market.BenchmarkSymbol)
	assert.Equal(t, ".NS", cfg.Market.TickerSuffix)
	assert.InDelta(t, 0.0688, cfg.Market.RiskFreeRate, 1e-12)
	assert.Equal(t, 10000, cfg.Optimizer.MonteCarloTrials)
	assert.Equal(t, 100, cfg.Optimizer.FrontierPoints)
	assert.Equal(t, uint64(42), cfg.Optimizer.Seed)
	assert.Equal(t, 200, cfg.Optimizer.MaxIterations)
	assert.Equal(t, 12*time.Hour, cfg.Cache.TTL)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("RISK_FREE_RATE", "0.05")
	t.Setenv("MC_TRIALS", "500")
	t.Setenv("MC_SEED", "7")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("TICKER_SUFFIX", ".BO")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.InDelta(t, 0.05, cfg.Market.RiskFreeRate, 1e-12)
	assert.Equal(t, 500, cfg.Optimizer.MonteCarloTrials)
	assert.Equal(t, uint64(7), cfg.Optimizer.Seed)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, ".BO", cfg.Market.TickerSuffix)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
log_level: debug
market:
  benchmark_symbol: "^GSPC"
  ticker_suffix: ""
optimizer:
  frontier_points: 25
cache:
  ttl: 1h
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "^GSPC", cfg.Market.BenchmarkSymbol)
	assert.Equal(t, "", cfg.Market.TickerSuffix)
	assert.Equal(t, 25, cfg.Optimizer.FrontierPoints)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	// untouched keys keep their defaults
	assert.Equal(t, 10000, cfg.Optimizer.MonteCarloTrials)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Config {
		t.Setenv("DATA_DIR", t.TempDir())
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }},
		{"port out of range", func(c *Config) { c.Port = 70000 }},
		{"negative risk-free", func(c *Config) { c.Market.RiskFreeRate = -0.01 }},
		{"single frontier point", func(c *Config) { c.Optimizer.FrontierPoints = 1 }},
		{"zero trials", func(c *Config) { c.Optimizer.MonteCarloTrials = 0 }},
		{"bad cron", func(c *Config) { c.Cache.EvictionSchedule = "every hour" }},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base(t)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWorkerCount(t *testing.T) {
	oc := OptimizerConfig{Workers: 3}
	assert.Equal(t, 3, oc.WorkerCount())

	oc.Workers = 0
	assert.GreaterOrEqual(t, oc.WorkerCount(), 1)
}
