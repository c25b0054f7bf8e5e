package testing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aristath/frontier/internal/domain"
)

// MockMarketDataProvider is a mock implementation of domain.MarketDataProvider
// serving fixed series from memory.
type MockMarketDataProvider struct {
	mu     sync.Mutex
	series map[string]domain.PriceSeries
	errs   map[string]error
	calls  map[string]int
}

// NewMockMarketDataProvider creates a provider serving series
func NewMockMarketDataProvider(series map[string]domain.PriceSeries) *MockMarketDataProvider {
	return &MockMarketDataProvider{
		series: series,
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

// SetError makes fetches of symbol fail with err
func (m *MockMarketDataProvider) SetError(symbol string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[symbol] = err
}

// Calls returns how many times symbol was fetched
func (m *MockMarketDataProvider) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

// TotalCalls returns the number of fetches across all symbols
func (m *MockMarketDataProvider) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// DailyCloses returns the stored series restricted to [start, end).
// Unknown symbols yield an empty series, mirroring a provider with no data.
func (m *MockMarketDataProvider) DailyCloses(_ context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[symbol]++
	if err := m.errs[symbol]; err != nil {
		return domain.PriceSeries{}, fmt.Errorf("%w: %s: %w", domain.ErrDataUnavailable, symbol, err)
	}

	src, ok := m.series[symbol]
	if !ok {
		return domain.PriceSeries{Symbol: symbol}, nil
	}

	points := make([]domain.PricePoint, 0, len(src.Points))
	for _, p := range src.Points {
		if p.Date.Before(start) || !p.Date.Before(end) {
			continue
		}
		points = append(points, p)
	}
	return domain.PriceSeries{Symbol: symbol, Points: points}, nil
}
