package domain

import (
	"context"
	"time"
)

// MarketDataProvider fetches daily close prices.
// Symbols are provider symbols (exchange suffix already applied).
// Implementations return ErrDataUnavailable (wrapped) when retrieval fails entirely.
type MarketDataProvider interface {
	DailyCloses(ctx context.Context, symbol string, start, end time.Time) (PriceSeries, error)
}
