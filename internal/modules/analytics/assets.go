package analytics

import (
	"encoding/json"
	"math"

	"github.com/aristath/frontier/internal/modules/returns"
	"github.com/aristath/frontier/pkg/formulas"
)

// AssetStat summarizes one ticker's own daily returns
type AssetStat struct {
	Ticker         string   `json:"ticker"`
	ExpectedReturn float64  `json:"expected_return"` // mean × 252
	StdDev         float64  `json:"std_dev"`         // std × √252
	Sharpe         *float64 `json:"sharpe"`
}

// AssetStats computes expected annual return, annual volatility and Sharpe ratio per ticker
func AssetStats(ds *returns.Dataset, riskFreeRate float64) []AssetStat {
	out := make([]AssetStat, ds.NumAssets())
	for j, ticker := range ds.Tickers {
		r := ds.AssetReturns(j)
		ret := formulas.AnnualizedReturn(r)
		vol := formulas.AnnualizedVolatility(r)
		out[j] = AssetStat{
			Ticker:         ticker,
			ExpectedReturn: ret,
			StdDev:         vol,
			Sharpe:         optional(formulas.Ratio(ret-riskFreeRate, vol)),
		}
	}
	return out
}

// CorrelationMatrix is the Pearson correlation of daily returns between tickers
type CorrelationMatrix struct {
	Tickers []string    `json:"tickers"`
	Values  [][]float64 `json:"values"`  // full precision
	Rounded [][]float64 `json:"rounded"` // two decimals, for display
}

// MarshalJSON encodes undefined correlations as null
func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j, v := range row {
			values[i][j] = optional(v)
		}
	}
	return json.Marshal(struct {
		Tickers []string     `json:"tickers"`
		Values  [][]*float64 `json:"values"`
		Rounded [][]float64  `json:"rounded"`
	}{m.Tickers, values, m.Rounded})
}

// Correlation returns the symmetric ticker × ticker correlation matrix. Entries involving a
// zero-variance asset are NaN in Values and zero in Rounded.
func Correlation(ds *returns.Dataset) CorrelationMatrix {
	corr := ds.Correlation()
	n := ds.NumAssets()

	m := CorrelationMatrix{
		Tickers: append([]string(nil), ds.Tickers...),
		Values:  make([][]float64, n),
		Rounded: make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		m.Values[i] = make([]float64, n)
		m.Rounded[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			v := corr.At(i, j)
			if !math.IsNaN(v) {
				v = math.Max(-1, math.Min(1, v))
			}
			m.Values[i][j] = v
			if !math.IsNaN(v) {
				m.Rounded[i][j] = Round2(v)
			}
		}
	}
	return m
}
