package marketdata

import (
	"context"
	"time"

	"github.com/aristath/frontier/internal/utils"
	"github.com/rs/zerolog"
)

// Checkpointer truncates the write-ahead log after bulk deletes
type Checkpointer interface {
	WALCheckpoint(mode string) error
}

// EvictionJob removes expired price cache entries on a schedule
type EvictionJob struct {
	repo *Repository
	wal  Checkpointer
	log  zerolog.Logger
}

// NewEvictionJob creates a new cache eviction job. wal may be nil.
func NewEvictionJob(repo *Repository, wal Checkpointer, log zerolog.Logger) *EvictionJob {
	return &EvictionJob{
		repo: repo,
		wal:  wal,
		log:  log.With().Str("job", "price_cache_eviction").Logger(),
	}
}

// Run deletes expired rows, then checkpoints the WAL if anything was removed
func (j *EvictionJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	done := utils.MeasureQuery("price_cache_evict", j.log)
	deleted, err := j.repo.DeleteExpired(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to evict expired prices")
		return err
	}
	done(deleted)

	if deleted == 0 {
		return nil
	}
	j.log.Info().Int64("deleted", deleted).Msg("Evicted expired price cache entries")

	if j.wal != nil {
		if err := j.wal.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Error().Err(err).Msg("Failed to checkpoint price cache WAL")
			return err
		}
	}
	return nil
}

// Name returns the job name for scheduling and logging
func (j *EvictionJob) Name() string {
	return "price_cache_eviction"
}
