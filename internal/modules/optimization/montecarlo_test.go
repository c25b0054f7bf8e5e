package optimization

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestSimulator_Run(t *testing.T) {
	model := fixtureModel(t, 253)
	cloud, err := NewSimulator(2000, 42, 4).Run(context.Background(), model)
	require.NoError(t, err)

	require.Len(t, cloud.Portfolios, 2000)
	for _, p := range cloud.Portfolios {
		require.Len(t, p.Weights, 4)
		assert.InDelta(t, 1.0, floats.Sum(p.Weights), 1e-12)
		for _, w := range p.Weights {
			assert.GreaterOrEqual(t, w, 0.0)
			assert.LessOrEqual(t, w, 1.0)
		}

		ret, vol := model.Performance(p.Weights)
		assert.Equal(t, ret, p.Return)
		assert.Equal(t, vol, p.Volatility)
		assert.Equal(t, SharpeRatio(ret, vol, testRiskFree), p.Sharpe)

		assert.GreaterOrEqual(t, p.Return, cloud.MinReturn)
		assert.LessOrEqual(t, p.Return, cloud.MaxReturn)
	}
	assert.Less(t, cloud.MinReturn, cloud.MaxReturn)

	annual := model.AnnualMeans()
	assert.Greater(t, cloud.MinReturn, floats.Min(annual))
	assert.Less(t, cloud.MaxReturn, floats.Max(annual))
}

func TestSimulator_DeterministicAcrossWorkerCounts(t *testing.T) {
	model := fixtureModel(t, 120)

	serial, err := NewSimulator(1500, 7, 1).Run(context.Background(), model)
	require.NoError(t, err)
	parallel, err := NewSimulator(1500, 7, 8).Run(context.Background(), model)
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestSimulator_SeedChangesDraws(t *testing.T) {
	model := fixtureModel(t, 120)

	a, err := NewSimulator(10, 1, 1).Run(context.Background(), model)
	require.NoError(t, err)
	b, err := NewSimulator(10, 2, 1).Run(context.Background(), model)
	require.NoError(t, err)

	assert.NotEqual(t, a.Portfolios[0].Weights, b.Portfolios[0].Weights)
}

func TestSimulator_Cancelled(t *testing.T) {
	model := fixtureModel(t, 60)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulator(5000, 42, 2).Run(ctx, model)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulatedPortfolio_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(SimulatedPortfolio{Weights: []float64{1}, Return: 0.1, Volatility: 0.2, Sharpe: 0.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"return":0.1,"volatility":0.2,"sharpe":0.5}`, string(b))

	b, err = json.Marshal(SimulatedPortfolio{Return: 0.1, Sharpe: math.NaN()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"return":0.1,"volatility":0,"sharpe":null}`, string(b))
}
