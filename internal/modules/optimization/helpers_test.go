package optimization

import (
	"testing"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/returns"
	testingpkg "github.com/aristath/frontier/internal/testing"
	"github.com/aristath/frontier/pkg/formulas"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const testRiskFree = 0.0688

// fixtureModel builds a model over the four default synthetic assets
func fixtureModel(t *testing.T, days int) *Model {
	t.Helper()
	profiles := append(append([]testingpkg.AssetProfile(nil), testingpkg.DefaultProfiles...), testingpkg.BenchmarkProfile)
	prices := testingpkg.NewPriceFixtures(profiles, testingpkg.FixtureStart, days, 11)

	tickers := make([]string, len(testingpkg.DefaultProfiles))
	m := mat.NewDense(days-1, len(tickers), nil)
	for j, p := range testingpkg.DefaultProfiles {
		tickers[j] = p.Symbol
		m.SetCol(j, formulas.PctChange(closes(prices[p.Symbol])))
	}
	bench := formulas.PctChange(closes(prices[testingpkg.BenchmarkProfile.Symbol]))
	dates := testingpkg.BusinessDays(testingpkg.FixtureStart, days)[1:]

	ds, err := returns.NewDataset(tickers, dates, m, bench)
	require.NoError(t, err)
	return NewModel(ds, testRiskFree)
}

// matrixModel builds a model from explicit daily returns, one row per period
func matrixModel(t *testing.T, rows [][]float64, bench []float64) *Model {
	t.Helper()
	n := len(rows[0])
	m := mat.NewDense(len(rows), n, nil)
	for i, r := range rows {
		m.SetRow(i, r)
	}
	tickers := make([]string, n)
	for j := range tickers {
		tickers[j] = string(rune('A' + j))
	}
	dates := testingpkg.BusinessDays(testingpkg.FixtureStart, len(rows))

	ds, err := returns.NewDataset(tickers, dates, m, bench)
	require.NoError(t, err)
	return NewModel(ds, testRiskFree)
}

func closes(s domain.PriceSeries) []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

func requireFeasible(t *testing.T, w []float64) {
	t.Helper()
	require.InDelta(t, 1.0, floats.Sum(w), 1e-9, "weights must sum to 1")
	for i, v := range w {
		require.GreaterOrEqual(t, v, 0.0, "weight %d below 0", i)
		require.LessOrEqual(t, v, 1.0, "weight %d above 1", i)
	}
}
