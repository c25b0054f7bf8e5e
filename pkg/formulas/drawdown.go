package formulas

import "math"

// CumulativeReturns compounds daily returns: cumprod(1+r) - 1
func CumulativeReturns(returns []float64) []float64 {
	out := make([]float64, len(returns))
	wealth := 1.0
	for i, r := range returns {
		wealth *= 1 + r
		out[i] = wealth - 1
	}
	return out
}

// MaxDrawdown is the minimum over time of cumulative return minus its running peak.
// The result is zero or negative; NaN for an empty series.
//
// Note the peak is taken over cumulative returns, not wealth, so the drawdown is an
// absolute difference of cumulative returns rather than a fraction of the peak.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}

	cumulative := CumulativeReturns(returns)
	peak := cumulative[0]
	worst := 0.0
	for _, c := range cumulative {
		if c > peak {
			peak = c
		}
		if dd := c - peak; dd < worst {
			worst = dd
		}
	}
	return worst
}
