package di

import (
	"fmt"

	"github.com/aristath/frontier/internal/config"
	"github.com/aristath/frontier/internal/marketdata"
	"github.com/aristath/frontier/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the scheduler and registers maintenance jobs.
// Returns JobInstances for manual triggering via API.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{}
	container.Scheduler = scheduler.New(log)

	if container.PriceRepo != nil {
		instances.PriceCacheEviction = marketdata.NewEvictionJob(container.PriceRepo, container.CacheDB, log)
		if err := container.Scheduler.AddJob(cfg.Cache.EvictionSchedule, instances.PriceCacheEviction); err != nil {
			return nil, fmt.Errorf("failed to register price cache eviction job: %w", err)
		}
	}

	return instances, nil
}
