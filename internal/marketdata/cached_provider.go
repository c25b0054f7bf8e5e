package marketdata

import (
	"context"
	"time"

	"github.com/aristath/frontier/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Cache lookup outcomes reported to the recorder
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupStale = "stale"
	LookupError = "error"
)

// Recorder receives cache lookup outcomes
type Recorder interface {
	RecordCacheLookup(result string)
}

// CachedProvider is a read-through cache in front of another provider.
// Concurrent requests for the same window share one upstream call.
// If the upstream fails, an expired entry is served rather than nothing.
type CachedProvider struct {
	upstream domain.MarketDataProvider
	repo     *Repository
	ttl      time.Duration
	timeout  time.Duration
	group    singleflight.Group
	recorder Recorder
	log      zerolog.Logger
}

// NewCachedProvider wraps upstream with repo. recorder may be nil.
func NewCachedProvider(upstream domain.MarketDataProvider, repo *Repository, ttl time.Duration, recorder Recorder, log zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		upstream: upstream,
		repo:     repo,
		ttl:      ttl,
		recorder: recorder,
		log:      log.With().Str("component", "price_cache").Logger(),
	}
}

// WithTimeout bounds each shared fetch. Zero leaves it unbounded.
func (p *CachedProvider) WithTimeout(d time.Duration) *CachedProvider {
	p.timeout = d
	return p
}

// DailyCloses implements domain.MarketDataProvider.
// The shared fetch does not inherit the caller's cancellation, so one caller giving up
// does not fail the others waiting on the same window.
func (p *CachedProvider) DailyCloses(ctx context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error) {
	s, e := windowKey(start, end)
	key := symbol + "|" + s + "|" + e

	ch := p.group.DoChan(key, func() (interface{}, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if p.timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, p.timeout)
			defer cancel()
		}
		return p.load(fetchCtx, symbol, start, end)
	})

	select {
	case <-ctx.Done():
		return domain.PriceSeries{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.PriceSeries{}, res.Err
		}
		if res.Shared {
			p.log.Debug().Str("symbol", symbol).Msg("Shared in-flight fetch")
		}
		return res.Val.(domain.PriceSeries), nil
	}
}

func (p *CachedProvider) load(ctx context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error) {
	cached, err := p.repo.GetIfFresh(ctx, symbol, start, end)
	if err != nil {
		p.log.Warn().Err(err).Str("symbol", symbol).Msg("Cache read failed")
	}
	if cached != nil {
		p.record(LookupHit)
		p.log.Debug().Str("symbol", symbol).Msg("Cache hit")
		return *cached, nil
	}

	series, err := p.upstream.DailyCloses(ctx, symbol, start, end)
	if err != nil {
		// the fetch may have failed on its own deadline; the local read must still run
		if stale, staleErr := p.repo.Get(context.WithoutCancel(ctx), symbol, start, end); staleErr == nil && stale != nil {
			p.record(LookupStale)
			p.log.Warn().
				Err(err).
				Str("symbol", symbol).
				Msg("Provider failed, using stale cached prices")
			return *stale, nil
		}
		p.record(LookupError)
		return domain.PriceSeries{}, err
	}
	p.record(LookupMiss)

	// Empty results are not cached so a later run retries the provider
	if len(series.Points) > 0 {
		if err := p.repo.Store(ctx, series, start, end, p.ttl); err != nil {
			p.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache prices")
		}
	}

	return series, nil
}

func (p *CachedProvider) record(result string) {
	if p.recorder != nil {
		p.recorder.RecordCacheLookup(result)
	}
}
