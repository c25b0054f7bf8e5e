package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Skewness is the biased (population) sample skewness m3 / m2^1.5
func Skewness(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	m2 := stat.Moment(2, x, nil)
	if m2 == 0 {
		return math.NaN()
	}
	return stat.Moment(3, x, nil) / math.Pow(m2, 1.5)
}

// Kurtosis is the biased Fisher kurtosis m4 / m2^2 - 3 (zero for a normal distribution)
func Kurtosis(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	m2 := stat.Moment(2, x, nil)
	if m2 == 0 {
		return math.NaN()
	}
	return stat.Moment(4, x, nil)/(m2*m2) - 3
}
