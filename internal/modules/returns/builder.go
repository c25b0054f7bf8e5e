package returns

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/utils"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// minAlignedPrices is the fewest common price rows that still yield two return periods
const minAlignedPrices = 3

// Builder fetches close prices once per run and turns them into an aligned Dataset
type Builder struct {
	provider  domain.MarketDataProvider
	benchmark string
	suffix    string
	workers   int
	log       zerolog.Logger
}

// NewBuilder creates a builder. suffix is appended to every user ticker to form the provider
// symbol; benchmark is used as-is. workers <= 0 means GOMAXPROCS.
func NewBuilder(provider domain.MarketDataProvider, benchmark, suffix string, workers int, log zerolog.Logger) *Builder {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Builder{
		provider:  provider,
		benchmark: benchmark,
		suffix:    suffix,
		workers:   workers,
		log:       log.With().Str("component", "return_series_builder").Logger(),
	}
}

// Benchmark returns the benchmark provider symbol
func (b *Builder) Benchmark() string {
	return b.benchmark
}

// fetchResult is the outcome of one symbol fetch
type fetchResult struct {
	series domain.PriceSeries
	err    error
}

// Build fetches every ticker and the benchmark over [cfg.Start, cfg.End), aligns all of them
// to their common dates and converts closes to simple daily returns.
// cfg is assumed validated.
func (b *Builder) Build(ctx context.Context, cfg domain.RunConfig) (*Dataset, error) {
	timer := utils.NewTimer("build_return_series", b.log).With("tickers", len(cfg.Tickers))
	defer timer.Stop()

	symbols := make([]string, len(cfg.Tickers)+1)
	for i, t := range cfg.Tickers {
		symbols[i] = t + b.suffix
	}
	benchIdx := len(cfg.Tickers)
	symbols[benchIdx] = b.benchmark

	results := b.fetchAll(ctx, symbols, cfg.Start, cfg.End)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// A fetch that was cancelled or timed out says nothing about whether the ticker has data
	for i, r := range results {
		if errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("failed to fetch %s: %w", symbols[i], r.err)
		}
	}

	if r := results[benchIdx]; r.err != nil || len(r.series.Points) == 0 {
		b.log.Error().Err(r.err).Str("symbol", b.benchmark).Msg("Benchmark data unavailable")
		return nil, fmt.Errorf("%w: benchmark %s", domain.ErrDataUnavailable, b.benchmark)
	}

	var missing []string
	var lastErr error
	for i, t := range cfg.Tickers {
		r := results[i]
		if r.err != nil || len(r.series.Points) == 0 {
			missing = append(missing, t)
			if r.err != nil {
				lastErr = r.err
			}
		}
	}
	if len(missing) == len(cfg.Tickers) {
		if lastErr != nil && !errors.Is(lastErr, domain.ErrDataUnavailable) {
			return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, lastErr)
		}
		return nil, fmt.Errorf("%w: no ticker returned data", domain.ErrDataUnavailable)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		b.log.Warn().Strs("missing", missing).Msg("Partial market data")
		return nil, &domain.PartialDataError{Missing: missing}
	}

	series := make([]domain.PriceSeries, len(results))
	for i, r := range results {
		series[i] = r.series
	}
	dates, prices := alignCloses(series)
	if len(dates) < minAlignedPrices {
		return nil, fmt.Errorf("%w: only %d common trading days in %s..%s", domain.ErrDataUnavailable,
			len(dates), cfg.Start.Format(domain.DateLayout), cfg.End.Format(domain.DateLayout))
	}

	periods := len(dates) - 1
	assetReturns := mat.NewDense(periods, len(cfg.Tickers), nil)
	for j := range cfg.Tickers {
		assetReturns.SetCol(j, pctChange(prices[j]))
	}
	benchmark := pctChange(prices[benchIdx])

	b.log.Debug().
		Strs("tickers", cfg.Tickers).
		Int("periods", periods).
		Str("first", dates[1].Format(domain.DateLayout)).
		Str("last", dates[len(dates)-1].Format(domain.DateLayout)).
		Msg("Return series built")

	return NewDataset(cfg.Tickers, dates[1:], assetReturns, benchmark)
}

// fetchAll fetches symbols concurrently. Individual failures are kept per symbol rather than
// cancelling the group, so that every missing ticker can be reported.
func (b *Builder) fetchAll(ctx context.Context, symbols []string, start, end time.Time) []fetchResult {
	results := make([]fetchResult, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, sym := range symbols {
		g.Go(func() error {
			series, err := b.provider.DailyCloses(gctx, sym, start, end)
			if err != nil {
				b.log.Warn().Err(err).Str("symbol", sym).Msg("Fetch failed")
			}
			results[i] = fetchResult{series: series, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// alignCloses intersects the trading days of every series and returns, per series, the closes
// on those days in ascending date order.
func alignCloses(series []domain.PriceSeries) ([]time.Time, [][]float64) {
	closes := make([]map[time.Time]float64, len(series))
	for i, s := range series {
		closes[i] = s.Closes()
	}

	var dates []time.Time
	for d := range closes[0] {
		common := true
		for _, c := range closes[1:] {
			if _, ok := c[d]; !ok {
				common = false
				break
			}
		}
		if common {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	prices := make([][]float64, len(series))
	for i, c := range closes {
		row := make([]float64, len(dates))
		for k, d := range dates {
			row[k] = c[d]
		}
		prices[i] = row
	}
	return dates, prices
}

// pctChange returns (p[i] - p[i-1]) / p[i-1] for i >= 1
func pctChange(prices []float64) []float64 {
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	return out
}

