// Package marketdata caches provider price history in SQLite so repeated runs over the
// same window do not refetch. Payloads are msgpack-encoded PriceSeries with an expiry.
package marketdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/frontier/internal/domain"
	"github.com/vmihailenco/msgpack/v5"
)

// Repository provides cache operations for price history
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new price cache repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func windowKey(start, end time.Time) (string, string) {
	return domain.TruncateDay(start).Format(domain.DateLayout), domain.TruncateDay(end).Format(domain.DateLayout)
}

// Store saves a series with expiration = now + ttl, replacing any previous entry
func (r *Repository) Store(ctx context.Context, series domain.PriceSeries, start, end time.Time, ttl time.Duration) error {
	payload, err := msgpack.Marshal(&series)
	if err != nil {
		return fmt.Errorf("failed to encode series %s: %w", series.Symbol, err)
	}

	now := r.now()
	s, e := windowKey(start, end)
	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO price_cache (symbol, start_date, end_date, payload, points, fetched_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		series.Symbol, s, e, payload, len(series.Points), now.Unix(), now.Add(ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store series %s: %w", series.Symbol, err)
	}
	return nil
}

// GetIfFresh returns the cached series only if it has not expired.
// Returns nil, nil on a miss.
func (r *Repository) GetIfFresh(ctx context.Context, symbol string, start, end time.Time) (*domain.PriceSeries, error) {
	return r.get(ctx, symbol, start, end, true)
}

// Get returns the cached series regardless of expiry.
// Use this as a fallback when the provider fails.
func (r *Repository) Get(ctx context.Context, symbol string, start, end time.Time) (*domain.PriceSeries, error) {
	return r.get(ctx, symbol, start, end, false)
}

func (r *Repository) get(ctx context.Context, symbol string, start, end time.Time, freshOnly bool) (*domain.PriceSeries, error) {
	s, e := windowKey(start, end)
	query := "SELECT payload FROM price_cache WHERE symbol = ? AND start_date = ? AND end_date = ?"
	args := []interface{}{symbol, s, e}
	if freshOnly {
		query += " AND expires_at > ?"
		args = append(args, r.now().Unix())
	}

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached series %s: %w", symbol, err)
	}

	var series domain.PriceSeries
	if err := msgpack.Unmarshal(payload, &series); err != nil {
		return nil, fmt.Errorf("failed to decode cached series %s: %w", symbol, err)
	}
	for i := range series.Points {
		series.Points[i].Date = series.Points[i].Date.UTC()
	}
	return &series, nil
}

// DeleteExpired removes all rows whose expires_at has passed.
// Returns the number of rows deleted.
func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM price_cache WHERE expires_at <= ?", r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired price cache rows: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Count returns the number of cached entries
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM price_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count price cache rows: %w", err)
	}
	return n, nil
}
