package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sampleReturns   = []float64{0.01, -0.02, 0.03, -0.01, 0.005}
	sampleBenchmark = []float64{0.008, -0.01, 0.02, -0.012, 0.004}
)

func TestMeanAndStdDev(t *testing.T) {
	tests := []struct {
		name    string
		data    []float64
		mean    float64
		std     float64
		nanMean bool
		nanStd  bool
	}{
		{name: "empty", data: nil, nanMean: true, nanStd: true},
		{name: "single value", data: []float64{0.02}, mean: 0.02, nanStd: true},
		{name: "sample", data: sampleReturns, mean: 0.003, std: 0.019235384061671343},
		{name: "constant", data: []float64{0.01, 0.01, 0.01}, mean: 0.01, std: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.nanMean {
				assert.True(t, math.IsNaN(Mean(tt.data)))
			} else {
				assert.InDelta(t, tt.mean, Mean(tt.data), 1e-12)
			}
			if tt.nanStd {
				assert.True(t, math.IsNaN(StdDev(tt.data)))
			} else {
				assert.InDelta(t, tt.std, StdDev(tt.data), 1e-12)
			}
		})
	}
}

func TestAnnualization(t *testing.T) {
	assert.InDelta(t, 0.003*252, AnnualizedReturn(sampleReturns), 1e-12)
	assert.InDelta(t, 0.3053522555999873, AnnualizedVolatility(sampleReturns), 1e-12)
}

func TestPctChange(t *testing.T) {
	got := PctChange([]float64{100, 110, 99})
	require.Len(t, got, 2)
	assert.InDelta(t, 0.10, got[0], 1e-12)
	assert.InDelta(t, -0.10, got[1], 1e-12)

	assert.Empty(t, PctChange([]float64{100}))
}

func TestDownsideDeviation(t *testing.T) {
	assert.InDelta(t, 0.11224972160321825, DownsideDeviation(sampleReturns), 1e-12)

	// A single negative return leaves the sample std undefined.
	assert.True(t, math.IsNaN(DownsideDeviation([]float64{0.01, -0.01, 0.02})))
}

func TestTrackingErrorAndInformationRatio(t *testing.T) {
	te, err := TrackingError(sampleReturns, sampleBenchmark)
	require.NoError(t, err)
	assert.InDelta(t, 0.11336666176614711, te, 1e-12)

	ir, err := InformationRatio(sampleReturns, sampleBenchmark)
	require.NoError(t, err)
	assert.InDelta(t, 2.222875720904844, ir, 1e-9)
}

func TestTrackingError_LengthMismatch(t *testing.T) {
	_, err := TrackingError(sampleReturns, sampleBenchmark[:4])
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = InformationRatio(sampleReturns[:2], sampleBenchmark)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestBeta(t *testing.T) {
	beta, err := Beta(sampleReturns, sampleBenchmark)
	require.NoError(t, err)
	assert.InDelta(t, 1.40625, beta, 1e-9)

	_, err = Beta(sampleReturns, sampleBenchmark[:3])
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestBeta_IdenticalSeries(t *testing.T) {
	beta, err := Beta(sampleBenchmark, sampleBenchmark)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, beta, 1e-12)
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 2.0, Ratio(4, 2), 1e-12)
	assert.True(t, math.IsNaN(Ratio(1, 0)))
	assert.True(t, math.IsNaN(Ratio(1, math.NaN())))
	assert.True(t, math.IsNaN(Ratio(1, math.Inf(1))))
	assert.True(t, math.IsNaN(Ratio(math.NaN(), 1)))
}

func TestPositivePeriods(t *testing.T) {
	pos, total := PositivePeriods([]float64{0.01, 0, -0.02, 0.03})
	assert.Equal(t, 2, pos)
	assert.Equal(t, 4, total)
}
