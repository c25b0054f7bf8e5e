package analytics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/aristath/frontier/internal/modules/returns"
	testingpkg "github.com/aristath/frontier/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// threeAssetDataset has two correlated assets and one with constant returns
func threeAssetDataset(t *testing.T) *returns.Dataset {
	t.Helper()
	dates := testingpkg.BusinessDays(testingpkg.FixtureStart, 4)
	m := mat.NewDense(4, 3, []float64{
		0.01, 0.02, 0.0078125,
		-0.02, -0.01, 0.0078125,
		0.03, 0.00, 0.0078125,
		0.00, 0.01, 0.0078125,
	})
	ds, err := returns.NewDataset([]string{"AAA", "BBB", "FLAT"}, dates, m, []float64{0.005, -0.01, 0.01, 0.0})
	require.NoError(t, err)
	return ds
}

func TestAssetStats(t *testing.T) {
	stats := AssetStats(threeAssetDataset(t), 0.05)
	require.Len(t, stats, 3)

	assert.Equal(t, "AAA", stats[0].Ticker)
	assert.InDelta(t, 1.26, stats[0].ExpectedReturn, 1e-12)
	assert.InDelta(t, 0.33045423283716613, stats[0].StdDev, 1e-12)
	require.NotNil(t, stats[0].Sharpe)
	assert.InDelta(t, 3.6616265726462536, *stats[0].Sharpe, 1e-9)

	assert.InDelta(t, 0.20493901531919198, stats[1].StdDev, 1e-12)
	require.NotNil(t, stats[1].Sharpe)
	assert.InDelta(t, 5.904195441338625, *stats[1].Sharpe, 1e-9)

	// Zero volatility leaves Sharpe undefined
	assert.Equal(t, 0.0, stats[2].StdDev)
	assert.Nil(t, stats[2].Sharpe)
}

func TestCorrelation(t *testing.T) {
	m := Correlation(threeAssetDataset(t))

	assert.Equal(t, []string{"AAA", "BBB", "FLAT"}, m.Tickers)
	require.Len(t, m.Values, 3)

	assert.InDelta(t, 1.0, m.Values[0][0], 1e-12)
	assert.InDelta(t, 0.3721042037676254, m.Values[0][1], 1e-12)
	assert.Equal(t, m.Values[0][1], m.Values[1][0])
	assert.Equal(t, 0.37, m.Rounded[0][1])
	assert.Equal(t, 1.0, m.Rounded[1][1])

	assert.True(t, math.IsNaN(m.Values[0][2]))
	assert.Equal(t, 0.0, m.Rounded[0][2])

	for i := range m.Values {
		for j := range m.Values[i] {
			if v := m.Values[i][j]; !math.IsNaN(v) {
				assert.LessOrEqual(t, math.Abs(v), 1.0)
			}
		}
	}
}

func TestCorrelationMatrix_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Correlation(threeAssetDataset(t)))
	require.NoError(t, err)

	var decoded struct {
		Tickers []string     `json:"tickers"`
		Values  [][]*float64 `json:"values"`
		Rounded [][]float64  `json:"rounded"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.NotNil(t, decoded.Values[0][1])
	assert.InDelta(t, 0.3721042037676254, *decoded.Values[0][1], 1e-12)
	assert.Nil(t, decoded.Values[0][2])
	assert.Equal(t, 0.0, decoded.Rounded[0][2])
}
