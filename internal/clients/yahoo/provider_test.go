package yahoo

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/aristath/frontier/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildSeries(t *testing.T) {
	rows := []closeRow{
		{Date: "2024-01-04", Close: 103},
		{Date: "2024-01-02", Close: 101},
		{Date: "2024-01-03 00:00:00", Close: 102},
		{Date: "2024-01-05", Close: math.NaN()},
		{Date: "2024-01-08", Close: 0},
		{Date: "2023-12-29", Close: 99},  // before start
		{Date: "2024-01-10", Close: 110}, // end is exclusive
	}

	series, skipped, err := buildSeries("TCS.NS", rows, day(2024, 1, 1), day(2024, 1, 10))
	require.NoError(t, err)

	assert.Equal(t, 2, skipped)
	assert.Equal(t, "TCS.NS", series.Symbol)
	require.Len(t, series.Points, 3)
	assert.Equal(t, day(2024, 1, 2), series.Points[0].Date)
	assert.Equal(t, 101.0, series.Points[0].Close)
	assert.Equal(t, day(2024, 1, 4), series.Points[2].Date)
}

func TestBuildSeries_BadDate(t *testing.T) {
	_, _, err := buildSeries("X", []closeRow{{Date: "04/01/2024", Close: 1}}, day(2024, 1, 1), day(2024, 2, 1))
	assert.Error(t, err)
}

func TestDailyCloses_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	p := NewProvider(2, zerolog.Nop())
	p.backoff = time.Millisecond
	p.fetch = func(symbol string, start time.Time) ([]closeRow, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("temporary")
		}
		return []closeRow{{Date: "2024-01-02", Close: 10}}, nil
	}

	series, err := p.DailyCloses(context.Background(), "INFY.NS", day(2024, 1, 1), day(2024, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, series.Points, 1)
}

func TestDailyCloses_ExhaustedRetries(t *testing.T) {
	p := NewProvider(1, zerolog.Nop())
	p.backoff = time.Millisecond
	p.fetch = func(string, time.Time) ([]closeRow, error) {
		return nil, errors.New("down")
	}

	_, err := p.DailyCloses(context.Background(), "INFY.NS", day(2024, 1, 1), day(2024, 1, 31))
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Contains(t, err.Error(), "INFY.NS")
}

func TestDailyCloses_ContextCancelled(t *testing.T) {
	p := NewProvider(3, zerolog.Nop())
	p.backoff = time.Hour
	p.fetch = func(string, time.Time) ([]closeRow, error) {
		return nil, errors.New("down")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.DailyCloses(ctx, "X", day(2024, 1, 1), day(2024, 1, 31))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDailyCloses_AttemptTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	p := NewProvider(0, zerolog.Nop()).WithTimeout(10 * time.Millisecond)
	p.fetch = func(string, time.Time) ([]closeRow, error) {
		<-release
		return nil, nil
	}

	_, err := p.DailyCloses(context.Background(), "X", day(2024, 1, 1), day(2024, 1, 31))
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Contains(t, err.Error(), "deadline exceeded")
}
