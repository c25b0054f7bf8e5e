// Package formulas holds the statistical estimators shared by the optimizer and the
// analytics tables. All functions operate on daily simple returns.
package formulas

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// TradingDaysPerYear is the annualization factor for daily data
	TradingDaysPerYear = 252
	// TradingDaysPerMonth is the monthly scaling factor for daily data
	TradingDaysPerMonth = 21
)

// ErrLengthMismatch is returned when two series that must be aligned differ in length.
var ErrLengthMismatch = errors.New("series length mismatch")

// Mean calculates the arithmetic mean, NaN for an empty slice
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation (ddof=1), NaN when fewer than two values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return math.NaN()
	}
	return stat.StdDev(data, nil)
}

// AnnualizedReturn scales the mean daily return by 252
func AnnualizedReturn(daily []float64) float64 {
	return Mean(daily) * TradingDaysPerYear
}

// AnnualizedVolatility calculates annualized volatility from daily returns
// Formula: Std Dev of Daily Returns × sqrt(252 trading days)
func AnnualizedVolatility(daily []float64) float64 {
	return StdDev(daily) * math.Sqrt(TradingDaysPerYear)
}

// PctChange converts prices to simple returns.
// Returns[i] = (Price[i+1] - Price[i]) / Price[i]; the undefined leading value is dropped.
func PctChange(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	return returns
}

// Negatives returns the strictly negative observations in order
func Negatives(returns []float64) []float64 {
	out := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r < 0 {
			out = append(out, r)
		}
	}
	return out
}

// DownsideDeviation is the sample std of negative-only returns, annualized by sqrt(252).
// NaN when fewer than two negative returns exist.
func DownsideDeviation(daily []float64) float64 {
	return StdDev(Negatives(daily)) * math.Sqrt(TradingDaysPerYear)
}

// ActiveReturns returns portfolio minus benchmark, element-wise
func ActiveReturns(portfolio, benchmark []float64) ([]float64, error) {
	if len(portfolio) != len(benchmark) {
		return nil, ErrLengthMismatch
	}
	diff := make([]float64, len(portfolio))
	for i := range portfolio {
		diff[i] = portfolio[i] - benchmark[i]
	}
	return diff, nil
}

// TrackingError is the annualized sample std of active returns
func TrackingError(portfolio, benchmark []float64) (float64, error) {
	diff, err := ActiveReturns(portfolio, benchmark)
	if err != nil {
		return math.NaN(), err
	}
	return AnnualizedVolatility(diff), nil
}

// InformationRatio is annualized active mean over tracking error
func InformationRatio(portfolio, benchmark []float64) (float64, error) {
	te, err := TrackingError(portfolio, benchmark)
	if err != nil {
		return math.NaN(), err
	}
	return Ratio(AnnualizedReturn(portfolio)-AnnualizedReturn(benchmark), te), nil
}

// Beta is the OLS slope of portfolio returns on benchmark returns, with intercept
func Beta(portfolio, benchmark []float64) (float64, error) {
	if len(portfolio) != len(benchmark) {
		return math.NaN(), ErrLengthMismatch
	}
	if len(portfolio) < 2 {
		return math.NaN(), nil
	}
	_, beta := stat.LinearRegression(benchmark, portfolio, nil, false)
	return beta, nil
}

// Ratio divides num by den, returning NaN when the denominator is zero or not finite
func Ratio(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) || math.IsNaN(num) {
		return math.NaN()
	}
	return num / den
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PositivePeriods counts the strictly positive observations
func PositivePeriods(returns []float64) (positive, total int) {
	for _, r := range returns {
		if r > 0 {
			positive++
		}
	}
	return positive, len(returns)
}
