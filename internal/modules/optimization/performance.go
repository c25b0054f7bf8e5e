// Package optimization finds portfolio weights: the performance model, the objective
// library, a constrained solver and the efficient frontier engine.
package optimization

import (
	"math"

	"github.com/aristath/frontier/pkg/formulas"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Performance computes the annualized expected return and volatility of a weight vector.
//
//	return     = Σ wᵢ·μᵢ × 252
//	volatility = √(wᵀΣw) × √252
func Performance(weights, meanReturns []float64, cov mat.Symmetric) (annualReturn, annualVolatility float64) {
	annualReturn = floats.Dot(weights, meanReturns) * formulas.TradingDaysPerYear

	w := mat.NewVecDense(len(weights), weights)
	variance := mat.Inner(w, cov, w)
	if variance < 0 {
		// Rounding on a numerically singular matrix
		variance = 0
	}
	annualVolatility = math.Sqrt(variance) * math.Sqrt(formulas.TradingDaysPerYear)
	return annualReturn, annualVolatility
}

// SharpeRatio is (return - riskFree) / volatility, NaN for zero volatility
func SharpeRatio(annualReturn, annualVolatility, riskFreeRate float64) float64 {
	return formulas.Ratio(annualReturn-riskFreeRate, annualVolatility)
}

// UniformWeights returns 1/n for each of n assets
func UniformWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 / float64(n)
	}
	return w
}
