package charts

import (
	"testing"

	"github.com/aristath/frontier/internal/modules/analytics"
	"github.com/aristath/frontier/internal/modules/optimization"
	"github.com/aristath/frontier/internal/modules/portfolio"
	testingpkg "github.com/aristath/frontier/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(t *testing.T) *portfolio.Report {
	t.Helper()

	daily := []float64{0.01, -0.05, 0.012, 0.008, -0.02, 0.004}
	bench := []float64{0.005, -0.02, 0.01, 0.0, -0.01, 0.002}
	dates := testingpkg.BusinessDays(testingpkg.FixtureStart, len(daily))

	cumulative, err := analytics.CumulativeReturns(dates, daily, bench)
	require.NoError(t, err)
	breaches, err := analytics.VaRBreaches(dates, daily)
	require.NoError(t, err)

	return &portfolio.Report{
		RunID:      "run-1",
		Benchmark:  "^NSEI",
		Allocation: analytics.NewAllocation([]string{"TCS", "INFY"}, []float64{0.7, 0.3}, 0.11, 0.14),
		Frontier: &optimization.Frontier{
			Points: []optimization.FrontierPoint{
				{TargetReturn: 0.08, Volatility: 0.12},
				{TargetReturn: 0.11, Volatility: 0.14},
			},
		},
		Cumulative: cumulative,
		Breaches:   breaches,
		Dates:      dates,
		Daily:      daily,
	}
}

func TestService_RenderEveryKind(t *testing.T) {
	svc := NewService(zerolog.Nop())
	report := sampleReport(t)

	for _, kind := range Kinds {
		t.Run(kind, func(t *testing.T) {
			b, err := svc.Render(kind, report)
			require.NoError(t, err)
			requirePNG(t, b)
		})
	}
}

func TestService_RenderUnknownKind(t *testing.T) {
	_, err := NewService(zerolog.Nop()).Render("heatmap", sampleReport(t))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestService_RenderWithoutFrontier(t *testing.T) {
	report := sampleReport(t)
	report.Frontier = nil

	_, err := NewService(zerolog.Nop()).Render(KindFrontier, report)
	assert.ErrorIs(t, err, ErrNotEnoughData)
}
