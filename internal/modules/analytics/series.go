package analytics

import (
	"fmt"
	"time"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/pkg/formulas"
)

// CumulativeSeries holds compounded returns of the portfolio and the benchmark per date
type CumulativeSeries struct {
	Dates     []time.Time `json:"dates"`
	Portfolio []float64   `json:"portfolio"`
	Benchmark []float64   `json:"benchmark"`
}

// CumulativeReturns compounds both daily series: cumprod(1+r) - 1
func CumulativeReturns(dates []time.Time, portfolio, benchmark []float64) (CumulativeSeries, error) {
	if len(dates) != len(portfolio) || len(portfolio) != len(benchmark) {
		return CumulativeSeries{}, fmt.Errorf("%w: %d dates, %d portfolio, %d benchmark returns",
			domain.ErrLengthMismatch, len(dates), len(portfolio), len(benchmark))
	}
	return CumulativeSeries{
		Dates:     append([]time.Time(nil), dates...),
		Portfolio: formulas.CumulativeReturns(portfolio),
		Benchmark: formulas.CumulativeReturns(benchmark),
	}, nil
}

// Final returns the total compounded return of the portfolio and the benchmark
func (s CumulativeSeries) Final() (portfolio, benchmark float64) {
	if len(s.Dates) == 0 {
		return 0, 0
	}
	return s.Portfolio[len(s.Portfolio)-1], s.Benchmark[len(s.Benchmark)-1]
}
