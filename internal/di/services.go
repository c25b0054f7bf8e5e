package di

import (
	"fmt"
	"time"

	"github.com/aristath/frontier/internal/clients/yahoo"
	"github.com/aristath/frontier/internal/config"
	"github.com/aristath/frontier/internal/marketdata"
	"github.com/aristath/frontier/internal/metrics"
	"github.com/aristath/frontier/internal/modules/optimization"
	"github.com/aristath/frontier/internal/modules/portfolio"
	"github.com/aristath/frontier/internal/modules/returns"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// InitializeServices builds the market-data chain and the optimization pipeline
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	// Each container owns its registry
	container.Registry = prometheus.NewRegistry()
	container.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	container.Recorder = metrics.New(container.Registry)

	container.YahooProvider = yahoo.NewProvider(cfg.Market.FetchRetries, log).WithTimeout(cfg.Market.FetchTimeout)
	container.MarketData = container.YahooProvider
	if container.CacheDB != nil {
		container.PriceRepo = marketdata.NewRepository(container.CacheDB.Conn())
		container.MarketData = marketdata.NewCachedProvider(
			container.YahooProvider,
			container.PriceRepo,
			cfg.Cache.TTL,
			container.Recorder,
			log,
		).WithTimeout(cfg.Market.FetchTimeout * time.Duration(cfg.Market.FetchRetries+1))
	}

	workers := cfg.Optimizer.WorkerCount()
	container.Validator = returns.NewValidator(cfg.Market.MaxLookbackYears)
	container.Builder = returns.NewBuilder(
		container.MarketData,
		cfg.Market.BenchmarkSymbol,
		cfg.Market.TickerSuffix,
		workers,
		log,
	)
	container.Optimizer = optimization.NewOptimizer(cfg.Optimizer.MaxIterations, cfg.Optimizer.Tolerance, log)
	container.FrontierEngine = optimization.NewFrontierEngine(
		container.Optimizer,
		optimization.NewSimulator(cfg.Optimizer.MonteCarloTrials, cfg.Optimizer.Seed, workers),
		cfg.Optimizer.FrontierPoints,
		workers,
		log,
	)
	container.PortfolioService = portfolio.NewService(
		container.Validator,
		container.Builder,
		container.Optimizer,
		container.FrontierEngine,
		container.Recorder,
		log,
	)

	log.Info().
		Int("workers", workers).
		Int("mc_trials", cfg.Optimizer.MonteCarloTrials).
		Int("frontier_points", cfg.Optimizer.FrontierPoints).
		Bool("price_cache", container.PriceRepo != nil).
		Msg("Services initialized")

	return nil
}
