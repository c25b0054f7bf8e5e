package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkewness(t *testing.T) {
	assert.InDelta(t, 0.22267706475589705, Skewness(sampleReturns), 1e-9)
	assert.InDelta(t, 0.0, Skewness([]float64{-1, 0, 1}), 1e-12)
	assert.True(t, math.IsNaN(Skewness([]float64{0.01, 0.01})))
}

func TestKurtosis(t *testing.T) {
	assert.InDelta(t, -1.077383126369613, Kurtosis(sampleReturns), 1e-9)
	assert.True(t, math.IsNaN(Kurtosis([]float64{0.5})))
}
