// Package di wires the application's dependencies.
package di

import (
	"github.com/aristath/frontier/internal/clients/yahoo"
	"github.com/aristath/frontier/internal/database"
	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/marketdata"
	"github.com/aristath/frontier/internal/metrics"
	"github.com/aristath/frontier/internal/modules/optimization"
	"github.com/aristath/frontier/internal/modules/portfolio"
	"github.com/aristath/frontier/internal/modules/returns"
	"github.com/aristath/frontier/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
)

// Container holds all dependencies for the application.
// It is created by Wire() and passed to the server for access to services.
type Container struct {
	// Storage (nil when the price cache is disabled)
	CacheDB   *database.DB
	PriceRepo *marketdata.Repository

	// Market data: Yahoo, optionally behind the read-through cache
	YahooProvider *yahoo.Provider
	MarketData    domain.MarketDataProvider

	// Observability
	Registry *prometheus.Registry
	Recorder *metrics.Recorder

	// Optimization pipeline
	Validator        returns.Validator
	Builder          *returns.Builder
	Optimizer        *optimization.Optimizer
	FrontierEngine   *optimization.FrontierEngine
	PortfolioService *portfolio.Service

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// JobInstances holds job instances for manual triggering via the API
type JobInstances struct {
	PriceCacheEviction *marketdata.EvictionJob // nil when the price cache is disabled
}

// Close releases the container's resources
func (c *Container) Close() error {
	if c.CacheDB != nil {
		return c.CacheDB.Close()
	}
	return nil
}
