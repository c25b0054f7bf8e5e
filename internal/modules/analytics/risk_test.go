package analytics

import (
	"testing"

	"github.com/aristath/frontier/internal/domain"
	testingpkg "github.com/aristath/frontier/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fatTail is twenty small gains followed by two large losses
func fatTail() []float64 {
	var r []float64
	for i := 0; i < 4; i++ {
		r = append(r, 0.01, 0.012, 0.008, 0.011, 0.009)
	}
	return append(r, -0.05, -0.08)
}

func TestRiskTable(t *testing.T) {
	rows := RiskTable(fatTail())
	require.Len(t, rows, 3)

	want := []struct {
		label       string
		level       float64
		varV, cvarV float64
		varDisplay  string
		cvarDisplay string
	}{
		{"90%", 0.90, 0.032133152164946645, 0.065, "3.21%", "6.50%"},
		{"95%", 0.95, 0.040340453064368245, 0.065, "4.03%", "6.50%"},
		{"99%", 0.99, 0.0557359846102882, 0.08, "5.57%", "8.00%"},
	}
	for i, w := range want {
		row := rows[i]
		assert.Equal(t, w.label, row.Label)
		assert.Equal(t, w.level, row.Level)
		require.NotNil(t, row.VaR)
		require.NotNil(t, row.CVaR)
		assert.InDelta(t, w.varV, *row.VaR, 1e-12)
		assert.InDelta(t, w.cvarV, *row.CVaR, 1e-12)
		assert.Equal(t, w.varDisplay, row.VaRDisplay)
		assert.Equal(t, w.cvarDisplay, row.CVaRDisplay)

		// CVaR is at least as large a loss as VaR
		assert.GreaterOrEqual(t, *row.CVaR, *row.VaR)
	}
}

func TestRiskTable_EmptyTail(t *testing.T) {
	rows := RiskTable([]float64{0.01, 0.011, 0.012, 0.013})
	for _, row := range rows {
		assert.NotNil(t, row.VaR)
		assert.Nil(t, row.CVaR)
		assert.Equal(t, NotAvailable, row.CVaRDisplay)
	}
}

func TestVaRBreaches(t *testing.T) {
	daily := fatTail()
	dates := testingpkg.BusinessDays(testingpkg.FixtureStart, len(daily))

	series, err := VaRBreaches(dates, daily)
	require.NoError(t, err)

	assert.InDelta(t, -0.040340453064368245, series.Threshold, 1e-12)
	require.Len(t, series.Breaches, 2)
	assert.Equal(t, dates[20], series.Breaches[0].Date)
	assert.Equal(t, -0.05, series.Breaches[0].Return)
	assert.Equal(t, dates[21], series.Breaches[1].Date)

	_, err = VaRBreaches(dates[:3], daily)
	assert.ErrorIs(t, err, domain.ErrLengthMismatch)
}
