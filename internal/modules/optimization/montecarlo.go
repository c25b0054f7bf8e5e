package optimization

import (
	"context"
	"encoding/json"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
)

// SimulatedPortfolio is one random allocation of the Monte Carlo cloud
type SimulatedPortfolio struct {
	Weights    []float64 `json:"-"`
	Return     float64   `json:"return"`
	Volatility float64   `json:"volatility"`
	Sharpe     float64   `json:"sharpe"`
}

// MarshalJSON encodes an undefined Sharpe ratio as null
func (p SimulatedPortfolio) MarshalJSON() ([]byte, error) {
	var sharpe *float64
	if finite(p.Sharpe) {
		sharpe = &p.Sharpe
	}
	return json.Marshal(struct {
		Return     float64  `json:"return"`
		Volatility float64  `json:"volatility"`
		Sharpe     *float64 `json:"sharpe"`
	}{p.Return, p.Volatility, sharpe})
}

// MonteCarloCloud is the simulated set of random portfolios with its return range
type MonteCarloCloud struct {
	Portfolios []SimulatedPortfolio `json:"portfolios"`
	MinReturn  float64              `json:"min_return"`
	MaxReturn  float64              `json:"max_return"`
}

// Simulator draws random long-only portfolios
type Simulator struct {
	trials  int
	seed    uint64
	workers int
}

// NewSimulator creates a simulator drawing trials portfolios from a PCG stream seeded by seed
func NewSimulator(trials int, seed uint64, workers int) *Simulator {
	return &Simulator{trials: trials, seed: seed, workers: max(1, workers)}
}

// Run draws uniform(0,1) per asset and normalizes each draw to sum to one. This is not a
// uniform distribution over the simplex; it favors central allocations.
// Draws are taken sequentially so the cloud depends only on the seed; evaluation is parallel.
func (s *Simulator) Run(ctx context.Context, model *Model) (MonteCarloCloud, error) {
	n := model.NumAssets()
	rng := rand.New(rand.NewPCG(s.seed, s.seed^0xda3e39cb94b95bdb))

	portfolios := make([]SimulatedPortfolio, s.trials)
	for k := range portfolios {
		w := make([]float64, n)
		sum := 0.0
		for i := range w {
			w[i] = rng.Float64()
			sum += w[i]
		}
		for i := range w {
			w[i] /= sum
		}
		portfolios[k].Weights = w
	}

	chunk := (s.trials + s.workers - 1) / s.workers
	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < s.trials; lo += chunk {
		hi := min(lo+chunk, s.trials)
		g.Go(func() error {
			for k := lo; k < hi; k++ {
				if k%1000 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				p := &portfolios[k]
				p.Return, p.Volatility = model.Performance(p.Weights)
				p.Sharpe = SharpeRatio(p.Return, p.Volatility, model.RiskFreeRate())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return MonteCarloCloud{}, err
	}

	cloud := MonteCarloCloud{
		Portfolios: portfolios,
		MinReturn:  math.Inf(1),
		MaxReturn:  math.Inf(-1),
	}
	for _, p := range portfolios {
		cloud.MinReturn = math.Min(cloud.MinReturn, p.Return)
		cloud.MaxReturn = math.Max(cloud.MaxReturn, p.Return)
	}
	return cloud, nil
}
