package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ConfidenceLevels are the levels reported in the VaR/CVaR table
var ConfidenceLevels = []float64{0.90, 0.95, 0.99}

// ParametricVaR calculates Gaussian Value at Risk: mean + std × Φ⁻¹(level).
// The result is expressed as a positive loss threshold for typical return series.
func ParametricVaR(returns []float64, level float64) float64 {
	return Mean(returns) + StdDev(returns)*distuv.UnitNormal.Quantile(level)
}

// TailMean returns the mean of the returns strictly below -threshold.
// NaN when the tail is empty.
func TailMean(returns []float64, threshold float64) float64 {
	sum := 0.0
	n := 0
	for _, r := range returns {
		if r < -threshold {
			sum += r
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// ConditionalVaR calculates CVaR as a positive loss magnitude: the negated mean of the
// returns falling below -VaR(level).
func ConditionalVaR(returns []float64, level float64) float64 {
	return -TailMean(returns, ParametricVaR(returns, level))
}
