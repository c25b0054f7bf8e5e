// Package config provides configuration management functionality.
//
// Configuration is layered: struct defaults, an optional YAML file named by
// CONFIG_FILE, a .env file, then environment variables. The result is validated
// before use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DataDir   string          `yaml:"data_dir" default:"./data" validate:"required"` // Base directory for the cache database (always absolute after Load)
	LogLevel  string          `yaml:"log_level" default:"info" validate:"oneof=debug info warn error"`
	LogPretty bool            `yaml:"log_pretty" default:"true"`
	Port      int             `yaml:"port" default:"8001" validate:"gt=0,lte=65535"`
	DevMode   bool            `yaml:"dev_mode"`
	Market    MarketConfig    `yaml:"market"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Cache     CacheConfig     `yaml:"cache"`
}

// MarketConfig holds market-data settings
type MarketConfig struct {
	BenchmarkSymbol  string        `yaml:"benchmark_symbol" default:"^NSEI" validate:"required"`
	TickerSuffix     string        `yaml:"ticker_suffix" default:".NS"` // Appended to every user ticker before fetching
	RiskFreeRate     float64       `yaml:"risk_free_rate" default:"0.0688" validate:"gte=0,lt=1"`
	MaxLookbackYears int           `yaml:"max_lookback_years" default:"10" validate:"gte=0"` // 0 disables the check
	FetchRetries     int           `yaml:"fetch_retries" default:"2" validate:"gte=0,lte=10"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout" default:"30s"`
}

// OptimizerConfig holds solver and frontier settings
type OptimizerConfig struct {
	MonteCarloTrials int     `yaml:"monte_carlo_trials" default:"10000" validate:"gt=0"`
	FrontierPoints   int     `yaml:"frontier_points" default:"100" validate:"gt=1"`
	Seed             uint64  `yaml:"seed" default:"42"`
	Workers          int     `yaml:"workers" validate:"gte=0"` // 0 means GOMAXPROCS
	MaxIterations    int     `yaml:"max_iterations" default:"200" validate:"gt=0"`
	Tolerance        float64 `yaml:"tolerance" default:"1e-9" validate:"gt=0"`
}

// CacheConfig holds market-data cache settings
type CacheConfig struct {
	Enabled          bool          `yaml:"enabled" default:"true"`
	TTL              time.Duration `yaml:"ttl" default:"12h"`
	EvictionSchedule string        `yaml:"eviction_schedule" default:"0 0 * * * *"`
}

var validate = validator.New()

// Load reads configuration from defaults, CONFIG_FILE, .env and the environment
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	cfg.DataDir = absDataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogPretty = getEnvAsBool("LOG_PRETTY", cfg.LogPretty)
	cfg.Port = getEnvAsInt("PORT", cfg.Port)
	cfg.DevMode = getEnvAsBool("DEV_MODE", cfg.DevMode)

	cfg.Market.BenchmarkSymbol = getEnv("BENCHMARK_SYMBOL", cfg.Market.BenchmarkSymbol)
	cfg.Market.TickerSuffix = getEnv("TICKER_SUFFIX", cfg.Market.TickerSuffix)
	cfg.Market.RiskFreeRate = getEnvAsFloat("RISK_FREE_RATE", cfg.Market.RiskFreeRate)
	cfg.Market.MaxLookbackYears = getEnvAsInt("MAX_LOOKBACK_YEARS", cfg.Market.MaxLookbackYears)
	cfg.Market.FetchRetries = getEnvAsInt("FETCH_RETRIES", cfg.Market.FetchRetries)
	cfg.Market.FetchTimeout = getEnvAsDuration("FETCH_TIMEOUT", cfg.Market.FetchTimeout)

	cfg.Optimizer.MonteCarloTrials = getEnvAsInt("MC_TRIALS", cfg.Optimizer.MonteCarloTrials)
	cfg.Optimizer.FrontierPoints = getEnvAsInt("FRONTIER_POINTS", cfg.Optimizer.FrontierPoints)
	cfg.Optimizer.Seed = getEnvAsUint("MC_SEED", cfg.Optimizer.Seed)
	cfg.Optimizer.Workers = getEnvAsInt("WORKERS", cfg.Optimizer.Workers)
	cfg.Optimizer.MaxIterations = getEnvAsInt("SOLVER_MAX_ITER", cfg.Optimizer.MaxIterations)
	cfg.Optimizer.Tolerance = getEnvAsFloat("SOLVER_TOLERANCE", cfg.Optimizer.Tolerance)

	cfg.Cache.Enabled = getEnvAsBool("CACHE_ENABLED", cfg.Cache.Enabled)
	cfg.Cache.TTL = getEnvAsDuration("CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.EvictionSchedule = getEnv("CACHE_EVICTION_SCHEDULE", cfg.Cache.EvictionSchedule)
}

// Validate checks struct constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Cache.Enabled {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.Cache.EvictionSchedule); err != nil {
			return fmt.Errorf("invalid cache eviction schedule %q: %w", c.Cache.EvictionSchedule, err)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache TTL must be positive, got %s", c.Cache.TTL)
		}
	}

	return nil
}

// WorkerCount resolves the configured worker count
func (c *OptimizerConfig) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintVal, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
