package returns

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aristath/frontier/internal/domain"
	testingpkg "github.com/aristath/frontier/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureProvider(days int) *testingpkg.MockMarketDataProvider {
	profiles := append(append([]testingpkg.AssetProfile(nil), testingpkg.DefaultProfiles...), testingpkg.BenchmarkProfile)
	return testingpkg.NewMockMarketDataProvider(testingpkg.NewPriceFixtures(profiles, testingpkg.FixtureStart, days, 7))
}

func fixtureConfig(tickers ...string) domain.RunConfig {
	return domain.RunConfig{
		Tickers:      tickers,
		Start:        testingpkg.FixtureStart,
		End:          testingpkg.FixtureStart.AddDate(1, 0, 0),
		Objective:    domain.ObjectiveMaxSharpe,
		RiskFreeRate: 0.0688,
	}
}

func TestBuilder_Build(t *testing.T) {
	provider := fixtureProvider(120)
	b := NewBuilder(provider, "^NSEI", ".NS", 2, zerolog.Nop())

	ds, err := b.Build(context.Background(), fixtureConfig("TCS", "INFY", "HDFCBANK"))
	require.NoError(t, err)

	assert.Equal(t, []string{"TCS", "INFY", "HDFCBANK"}, ds.Tickers)
	assert.Equal(t, 3, ds.NumAssets())
	assert.Equal(t, 119, ds.NumPeriods())
	assert.Len(t, ds.Benchmark, 119)

	rows, cols := ds.Returns.Dims()
	assert.Equal(t, 119, rows)
	assert.Equal(t, 3, cols)

	// The leading price has no return, so the first return date is the second trading day
	days := testingpkg.BusinessDays(testingpkg.FixtureStart, 120)
	assert.Equal(t, days[1], ds.Dates[0])
	assert.Equal(t, days[119], ds.Dates[118])

	assert.Equal(t, 1, provider.Calls("TCS.NS"))
	assert.Equal(t, 1, provider.Calls("^NSEI"))
	assert.Equal(t, 4, provider.TotalCalls())
}

func TestBuilder_ReturnsMatchPrices(t *testing.T) {
	tcs := testingpkg.NewConstantGrowthSeries("TCS.NS", testingpkg.FixtureStart, 10, 0.01)
	infy := testingpkg.NewConstantGrowthSeries("INFY.NS", testingpkg.FixtureStart, 10, -0.005)
	bench := testingpkg.NewConstantGrowthSeries("^NSEI", testingpkg.FixtureStart, 10, 0.002)
	provider := testingpkg.NewMockMarketDataProvider(map[string]domain.PriceSeries{
		"TCS.NS": tcs, "INFY.NS": infy, "^NSEI": bench,
	})
	b := NewBuilder(provider, "^NSEI", ".NS", 0, zerolog.Nop())

	ds, err := b.Build(context.Background(), fixtureConfig("TCS", "INFY"))
	require.NoError(t, err)

	for _, r := range ds.AssetReturns(0) {
		assert.InDelta(t, 0.01, r, 1e-12)
	}
	for _, r := range ds.AssetReturns(1) {
		assert.InDelta(t, -0.005, r, 1e-12)
	}
	for _, r := range ds.Benchmark {
		assert.InDelta(t, 0.002, r, 1e-12)
	}
}

func TestBuilder_AlignsOnCommonDates(t *testing.T) {
	tcs := testingpkg.NewConstantGrowthSeries("TCS.NS", testingpkg.FixtureStart, 10, 0.01)
	infy := testingpkg.NewConstantGrowthSeries("INFY.NS", testingpkg.FixtureStart, 10, 0.02)
	bench := testingpkg.NewConstantGrowthSeries("^NSEI", testingpkg.FixtureStart, 10, 0.0)

	// INFY misses its 4th trading day; the benchmark misses its 7th
	infy.Points = append(infy.Points[:3:3], infy.Points[4:]...)
	bench.Points = append(bench.Points[:6:6], bench.Points[7:]...)

	provider := testingpkg.NewMockMarketDataProvider(map[string]domain.PriceSeries{
		"TCS.NS": tcs, "INFY.NS": infy, "^NSEI": bench,
	})
	b := NewBuilder(provider, "^NSEI", ".NS", 0, zerolog.Nop())

	ds, err := b.Build(context.Background(), fixtureConfig("TCS", "INFY"))
	require.NoError(t, err)

	// 10 prices minus 2 gaps leaves 8 common days and 7 returns
	require.Equal(t, 7, ds.NumPeriods())
	assert.Len(t, ds.Benchmark, 7)

	days := testingpkg.BusinessDays(testingpkg.FixtureStart, 10)
	assert.NotContains(t, ds.Dates, days[3])
	assert.NotContains(t, ds.Dates, days[6])

	// Across the gap TCS compounds two days of growth
	gapIdx := 2 // return dated days[4], measured from days[2]
	assert.Equal(t, days[4], ds.Dates[gapIdx])
	assert.InDelta(t, 1.01*1.01-1, ds.AssetReturns(0)[gapIdx], 1e-12)
	assert.InDelta(t, 1.02*1.02-1, ds.AssetReturns(1)[gapIdx], 1e-12)
}

func TestBuilder_PartialDataNamesMissingTickers(t *testing.T) {
	provider := fixtureProvider(60)
	b := NewBuilder(provider, "^NSEI", ".NS", 0, zerolog.Nop())

	_, err := b.Build(context.Background(), fixtureConfig("TCS", "INFY", "HDFCBANK", "RELIANCE", "WIPRO"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPartialDataMissing)

	var partial *domain.PartialDataError
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, []string{"WIPRO"}, partial.Missing)
	assert.Equal(t, "Data for the following tickers could not be retrieved: WIPRO", err.Error())
}

func TestBuilder_PartialDataIncludesFetchErrors(t *testing.T) {
	provider := fixtureProvider(60)
	provider.SetError("TCS.NS", errors.New("timeout"))
	b := NewBuilder(provider, "^NSEI", ".NS", 0, zerolog.Nop())

	_, err := b.Build(context.Background(), fixtureConfig("TCS", "INFY", "ZOMATO"))

	var partial *domain.PartialDataError
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, []string{"TCS", "ZOMATO"}, partial.Missing)
}

func TestBuilder_AllTickersFailing(t *testing.T) {
	provider := fixtureProvider(60)
	provider.SetError("TCS.NS", errors.New("connection refused"))
	provider.SetError("INFY.NS", errors.New("connection refused"))
	b := NewBuilder(provider, "^NSEI", ".NS", 0, zerolog.Nop())

	_, err := b.Build(context.Background(), fixtureConfig("TCS", "INFY"))
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.NotErrorIs(t, err, domain.ErrPartialDataMissing)
}

func TestBuilder_BenchmarkFailing(t *testing.T) {
	provider := fixtureProvider(60)
	provider.SetError("^NSEI", errors.New("503"))
	b := NewBuilder(provider, "^NSEI", ".NS", 0, zerolog.Nop())

	_, err := b.Build(context.Background(), fixtureConfig("TCS", "INFY"))
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestBuilder_TooFewCommonDays(t *testing.T) {
	provider := fixtureProvider(60)
	b := NewBuilder(provider, "^NSEI", ".NS", 0, zerolog.Nop())

	cfg := fixtureConfig("TCS", "INFY")
	cfg.End = cfg.Start.AddDate(0, 0, 2) // two weekdays

	_, err := b.Build(context.Background(), cfg)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestBuilder_CancelledContext(t *testing.T) {
	provider := fixtureProvider(60)
	b := NewBuilder(provider, "^NSEI", ".NS", 0, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Build(ctx, fixtureConfig("TCS", "INFY"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuilder_CancelledFetchIsNotMissingData(t *testing.T) {
	for _, fetchErr := range []error{context.Canceled, context.DeadlineExceeded} {
		provider := fixtureProvider(60)
		provider.SetError("TCS.NS", fetchErr)
		b := NewBuilder(provider, "^NSEI", ".NS", 0, zerolog.Nop())

		_, err := b.Build(context.Background(), fixtureConfig("TCS", "INFY"))
		assert.ErrorIs(t, err, fetchErr)
		assert.NotErrorIs(t, err, domain.ErrPartialDataMissing)

		var partial *domain.PartialDataError
		assert.False(t, errors.As(err, &partial))
	}
}

func TestBuilder_EndIsExclusive(t *testing.T) {
	provider := fixtureProvider(30)
	b := NewBuilder(provider, "^NSEI", ".NS", 0, zerolog.Nop())

	days := testingpkg.BusinessDays(testingpkg.FixtureStart, 30)
	cfg := fixtureConfig("TCS", "INFY")
	cfg.End = days[10]

	ds, err := b.Build(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 9, ds.NumPeriods())
	assert.True(t, ds.Dates[len(ds.Dates)-1].Before(days[10]))
	assert.Equal(t, days[9], ds.Dates[len(ds.Dates)-1].In(time.UTC))
}
