package optimization

import (
	"context"
	"time"

	"github.com/aristath/frontier/internal/utils"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// FrontierPoint is the minimum volatility attainable at a target annual return
type FrontierPoint struct {
	TargetReturn float64   `json:"target_return"`
	Volatility   float64   `json:"volatility"`
	Weights      []float64 `json:"weights"`
	Converged    bool      `json:"converged"`
}

// Frontier is the efficient frontier curve together with the Monte Carlo cloud that bounds it
type Frontier struct {
	Points     []FrontierPoint `json:"points"`
	MonteCarlo MonteCarloCloud `json:"monte_carlo"`
	Warnings   []string        `json:"warnings,omitempty"`
}

// FrontierEngine traces the efficient frontier
type FrontierEngine struct {
	optimizer *Optimizer
	simulator *Simulator
	points    int
	workers   int
	log       zerolog.Logger
}

// NewFrontierEngine creates an engine solving points target returns with up to workers
// concurrent solves.
func NewFrontierEngine(optimizer *Optimizer, simulator *Simulator, points, workers int, log zerolog.Logger) *FrontierEngine {
	return &FrontierEngine{
		optimizer: optimizer,
		simulator: simulator,
		points:    points,
		workers:   max(1, workers),
		log:       log.With().Str("component", "frontier").Logger(),
	}
}

// Build runs the Monte Carlo simulation, then solves the minimum-volatility problem for
// equally spaced target returns between the simulated minimum and maximum.
// Points are returned in ascending target order.
func (e *FrontierEngine) Build(ctx context.Context, model *Model) (*Frontier, error) {
	timer := utils.NewTimer("efficient_frontier", e.log).
		WithThreshold(30*time.Second).
		With("assets", model.NumAssets())
	defer timer.Stop()

	cloud, err := e.simulator.Run(ctx, model)
	if err != nil {
		return nil, err
	}

	targets := Linspace(cloud.MinReturn, cloud.MaxReturn, e.points)
	points := make([]FrontierPoint, len(targets))
	warnings := make([]string, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, target := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := e.optimizer.MinVolatilityForReturn(model, target)
			points[i] = FrontierPoint{
				TargetReturn: target,
				Volatility:   res.Objective,
				Weights:      res.Weights,
				Converged:    res.Converged,
			}
			warnings[i] = res.Warning
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	frontier := &Frontier{Points: points, MonteCarlo: cloud}
	unconverged := 0
	for _, w := range warnings {
		if w != "" {
			unconverged++
			frontier.Warnings = append(frontier.Warnings, w)
		}
	}
	if unconverged > 0 {
		e.log.Warn().Int("unconverged", unconverged).Int("points", len(points)).Msg("Some frontier solves did not converge")
	}
	return frontier, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
