package returns

import (
	"fmt"
	"time"

	"github.com/aristath/frontier/internal/domain"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Dataset holds date-aligned daily simple returns for the tickers and the benchmark.
// Row i of Returns and Benchmark[i] both belong to Dates[i]. Immutable after construction.
type Dataset struct {
	Tickers   []string    // User-facing tickers, column order of Returns
	Dates     []time.Time // Dates of the return rows, ascending
	Returns   *mat.Dense  // periods × assets
	Benchmark []float64   // benchmark return per period

	meanReturns []float64
	covariance  *mat.SymDense
	correlation *mat.SymDense
}

// NewDataset validates dimensions and precomputes mean returns, covariance and correlation.
func NewDataset(tickers []string, dates []time.Time, returns *mat.Dense, benchmark []float64) (*Dataset, error) {
	rows, cols := returns.Dims()
	if cols != len(tickers) {
		return nil, fmt.Errorf("%w: %d return columns for %d tickers", domain.ErrLengthMismatch, cols, len(tickers))
	}
	if rows != len(dates) || rows != len(benchmark) {
		return nil, fmt.Errorf("%w: %d return rows, %d dates, %d benchmark returns",
			domain.ErrLengthMismatch, rows, len(dates), len(benchmark))
	}
	if rows < 2 {
		return nil, fmt.Errorf("%w: need at least 2 aligned return periods, got %d", domain.ErrDataUnavailable, rows)
	}

	means := make([]float64, cols)
	for j := 0; j < cols; j++ {
		means[j] = stat.Mean(mat.Col(nil, j, returns), nil)
	}

	cov := mat.NewSymDense(cols, nil)
	stat.CovarianceMatrix(cov, returns, nil)

	corr := mat.NewSymDense(cols, nil)
	stat.CorrelationMatrix(corr, returns, nil)

	return &Dataset{
		Tickers:     append([]string(nil), tickers...),
		Dates:       append([]time.Time(nil), dates...),
		Returns:     mat.DenseCopyOf(returns),
		Benchmark:   append([]float64(nil), benchmark...),
		meanReturns: means,
		covariance:  cov,
		correlation: corr,
	}, nil
}

// NumAssets returns the number of tickers
func (d *Dataset) NumAssets() int {
	return len(d.Tickers)
}

// NumPeriods returns the number of aligned return periods
func (d *Dataset) NumPeriods() int {
	return len(d.Dates)
}

// MeanReturns returns a copy of the mean daily return per ticker
func (d *Dataset) MeanReturns() []float64 {
	return append([]float64(nil), d.meanReturns...)
}

// Covariance returns the sample (ddof=1) covariance of daily returns
func (d *Dataset) Covariance() *mat.SymDense {
	return mat.NewSymDense(d.NumAssets(), append([]float64(nil), d.covariance.RawSymmetric().Data...))
}

// Correlation returns the Pearson correlation of daily returns
func (d *Dataset) Correlation() *mat.SymDense {
	return mat.NewSymDense(d.NumAssets(), append([]float64(nil), d.correlation.RawSymmetric().Data...))
}

// AssetReturns returns the daily returns of column j
func (d *Dataset) AssetReturns(j int) []float64 {
	return mat.Col(nil, j, d.Returns)
}

// PortfolioDaily returns the realized daily returns of a weighted portfolio: Returns · w
func (d *Dataset) PortfolioDaily(weights []float64) []float64 {
	if len(weights) != d.NumAssets() {
		panic(fmt.Sprintf("returns: %d weights for %d assets", len(weights), d.NumAssets()))
	}
	var out mat.VecDense
	out.MulVec(d.Returns, mat.NewVecDense(len(weights), append([]float64(nil), weights...)))
	return append([]float64(nil), out.RawVector().Data...)
}
