package testing

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/aristath/frontier/internal/domain"
)

// AssetProfile describes a synthetic asset: daily drift and daily volatility
type AssetProfile struct {
	Symbol string
	Drift  float64
	Vol    float64
}

// DefaultProfiles is a four-asset universe with distinct risk/return profiles,
// using provider symbols (".NS" suffix).
var DefaultProfiles = []AssetProfile{
	{Symbol: "TCS.NS", Drift: 0.0006, Vol: 0.012},
	{Symbol: "INFY.NS", Drift: 0.0004, Vol: 0.015},
	{Symbol: "HDFCBANK.NS", Drift: 0.0003, Vol: 0.010},
	{Symbol: "RELIANCE.NS", Drift: 0.0008, Vol: 0.020},
}

// BenchmarkProfile is the synthetic index
var BenchmarkProfile = AssetProfile{Symbol: "^NSEI", Drift: 0.0004, Vol: 0.009}

// FixtureStart is the first calendar day of generated fixtures
var FixtureStart = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

// BusinessDays returns n weekdays starting at start (inclusive)
func BusinessDays(start time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	for d := domain.TruncateDay(start); len(days) < n; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

// NewPriceFixtures generates deterministic close histories for each profile.
// Every asset shares a common market factor so the series are correlated.
func NewPriceFixtures(profiles []AssetProfile, start time.Time, days int, seed uint64) map[string]domain.PriceSeries {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	dates := BusinessDays(start, days)

	market := make([]float64, days)
	for i := range market {
		market[i] = rng.NormFloat64()
	}

	out := make(map[string]domain.PriceSeries, len(profiles))
	for _, p := range profiles {
		points := make([]domain.PricePoint, days)
		price := 100.0
		for i, d := range dates {
			if i > 0 {
				shock := 0.6*market[i] + 0.8*rng.NormFloat64()
				price *= math.Exp(p.Drift + p.Vol*shock)
			}
			points[i] = domain.PricePoint{Date: d, Close: price}
		}
		out[p.Symbol] = domain.PriceSeries{Symbol: p.Symbol, Points: points}
	}
	return out
}

// NewConstantGrowthSeries returns a series whose daily return is exactly r
func NewConstantGrowthSeries(symbol string, start time.Time, days int, r float64) domain.PriceSeries {
	dates := BusinessDays(start, days)
	points := make([]domain.PricePoint, days)
	price := 100.0
	for i, d := range dates {
		if i > 0 {
			price *= 1 + r
		}
		points[i] = domain.PricePoint{Date: d, Close: price}
	}
	return domain.PriceSeries{Symbol: symbol, Points: points}
}
