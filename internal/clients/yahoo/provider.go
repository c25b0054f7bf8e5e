// Package yahoo provides daily close history from Yahoo Finance.
package yahoo

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aristath/frontier/internal/domain"
	yahoofinanceapi "github.com/oscarli916/yahoo-finance-api"
	"github.com/rs/zerolog"
)

const dailyInterval = "1d"

// closeRow is one raw row from the history endpoint
type closeRow struct {
	Date  string
	Close float64
}

type historyFunc func(symbol string, start time.Time) ([]closeRow, error)

// Provider implements domain.MarketDataProvider on top of the Yahoo chart API
type Provider struct {
	retries int
	backoff time.Duration
	timeout time.Duration // per attempt, zero disables
	fetch   historyFunc
	log     zerolog.Logger
}

// NewProvider creates a Yahoo provider that retries failed fetches
func NewProvider(retries int, log zerolog.Logger) *Provider {
	return &Provider{
		retries: retries,
		backoff: 500 * time.Millisecond,
		fetch:   fetchHistory,
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

func fetchHistory(symbol string, start time.Time) ([]closeRow, error) {
	ticker := yahoofinanceapi.NewTicker(symbol)
	data, err := ticker.History(yahoofinanceapi.HistoryQuery{
		Start:    start.Format(domain.DateLayout),
		Interval: dailyInterval,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]closeRow, 0, len(data))
	for dateStr, price := range data {
		rows = append(rows, closeRow{Date: dateStr, Close: price.Close})
	}
	return rows, nil
}

// WithTimeout bounds each fetch attempt
func (p *Provider) WithTimeout(d time.Duration) *Provider {
	p.timeout = d
	return p
}

// DailyCloses fetches closes for symbol in [start, end).
// The upstream query is open-ended, so the end bound is applied here.
func (p *Provider) DailyCloses(ctx context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error) {
	var (
		rows    []closeRow
		lastErr error
	)

	for attempt := 0; attempt <= p.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return domain.PriceSeries{}, ctx.Err()
			case <-time.After(p.backoff * time.Duration(attempt)):
			}
		}

		rows, lastErr = p.fetchWithContext(ctx, symbol, start)
		if lastErr == nil {
			break
		}
		p.log.Warn().
			Err(lastErr).
			Str("symbol", symbol).
			Int("attempt", attempt+1).
			Msg("History fetch failed")
	}
	if lastErr != nil {
		return domain.PriceSeries{}, fmt.Errorf("%w: %s: %v", domain.ErrDataUnavailable, symbol, lastErr)
	}

	series, skipped, err := buildSeries(symbol, rows, start, end)
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("%w: %s: %v", domain.ErrDataUnavailable, symbol, err)
	}
	if skipped > 0 {
		p.log.Debug().Str("symbol", symbol).Int("skipped", skipped).Msg("Skipped NaN or non-positive closes")
	}

	p.log.Debug().
		Str("symbol", symbol).
		Int("points", len(series.Points)).
		Msg("Fetched daily closes")

	return series, nil
}

func (p *Provider) fetchWithContext(ctx context.Context, symbol string, start time.Time) ([]closeRow, error) {
	type result struct {
		rows []closeRow
		err  error
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	ch := make(chan result, 1)
	go func() {
		rows, err := p.fetch(symbol, start)
		ch <- result{rows: rows, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.rows, r.err
	}
}

// buildSeries parses, filters and sorts raw rows
func buildSeries(symbol string, rows []closeRow, start, end time.Time) (domain.PriceSeries, int, error) {
	start = domain.TruncateDay(start)
	end = domain.TruncateDay(end)

	points := make([]domain.PricePoint, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if math.IsNaN(row.Close) || row.Close <= 0 {
			skipped++
			continue
		}

		d, err := time.Parse(domain.DateLayout, row.Date)
		if err != nil {
			d, err = time.Parse("2006-01-02 15:04:05", row.Date)
			if err != nil {
				return domain.PriceSeries{}, 0, fmt.Errorf("parse date %s for %s: %w", row.Date, symbol, err)
			}
		}
		d = domain.TruncateDay(d)
		if d.Before(start) || !d.Before(end) {
			continue
		}

		points = append(points, domain.PricePoint{Date: d, Close: row.Close})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	return domain.PriceSeries{Symbol: symbol, Points: points}, skipped, nil
}
