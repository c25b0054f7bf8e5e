package optimization

import (
	"fmt"
	"math"

	"github.com/aristath/frontier/internal/domain"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

// Result is an optimized weight vector with the solver's diagnostics.
// A non-converged result is still usable; Warning explains why it may be suboptimal.
type Result struct {
	Weights    []float64
	Objective  float64
	Converged  bool
	Iterations int
	Warning    string
}

// Optimizer minimizes objectives over fully-invested long-only weight vectors
type Optimizer struct {
	settings SolverSettings
	log      zerolog.Logger
}

// NewOptimizer creates an optimizer with the given iteration budget and tolerance
func NewOptimizer(maxIterations int, tolerance float64, log zerolog.Logger) *Optimizer {
	return &Optimizer{
		settings: SolverSettings{MaxIterations: maxIterations, Tolerance: tolerance},
		log:      log.With().Str("component", "optimizer").Logger(),
	}
}

// Optimize minimizes the named objective subject to Σw = 1 and 0 ≤ wᵢ ≤ 1, starting from
// the uniform allocation.
func (o *Optimizer) Optimize(model *Model, key domain.Objective) (Result, error) {
	obj, err := model.Objective(key)
	if err != nil {
		return Result{}, err
	}

	n := model.NumAssets()
	problem := Problem{
		Func:     obj.Func,
		Grad:     obj.Grad,
		Equality: []LinearEquality{budgetConstraint(n)},
	}

	res := o.run(problem, UniformWeights(n), string(key))
	if !res.Converged {
		o.log.Warn().
			Str("objective", string(key)).
			Int("iterations", res.Iterations).
			Str("status", res.Warning).
			Msg("Optimizer did not converge, using last iterate")
	}
	return res, nil
}

// MinVolatilityForReturn minimizes volatility subject to Σw = 1, 0 ≤ wᵢ ≤ 1 and an annual
// expected return equal to target. Targets outside the attainable range are clamped to it.
func (o *Optimizer) MinVolatilityForReturn(model *Model, target float64) Result {
	annual := model.AnnualMeans()
	lo, hi := floats.Min(annual), floats.Max(annual)
	if target < lo {
		target = lo
	} else if target > hi {
		target = hi
	}

	obj := model.volatilityObjective()
	problem := Problem{
		Func: obj.Func,
		Grad: obj.Grad,
		Equality: []LinearEquality{
			budgetConstraint(len(annual)),
			{Coef: annual, Value: target},
		},
	}
	return o.run(problem, targetReturnStart(annual, target), "min_volatility_for_return")
}

func (o *Optimizer) run(problem Problem, start []float64, name string) Result {
	sr := solve(problem, start, o.settings)

	weights := finishWeights(sr.X)
	res := Result{
		Weights:    weights,
		Objective:  problem.Func(weights),
		Converged:  sr.Converged,
		Iterations: sr.Iterations,
	}
	if !sr.Converged {
		res.Warning = fmt.Sprintf("%s: solver stopped after %d iterations: %s", name, sr.Iterations, sr.Status)
	}

	o.log.Debug().
		Str("problem", name).
		Int("iterations", sr.Iterations).
		Bool("converged", sr.Converged).
		Float64("objective", res.Objective).
		Msg("Solve finished")
	return res
}

// budgetConstraint is Σw = 1
func budgetConstraint(n int) LinearEquality {
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	return LinearEquality{Coef: ones, Value: 1}
}

// targetReturnStart mixes the uniform allocation with the single asset at the far end of
// the return range so that the starting point satisfies μᵀw = target exactly.
func targetReturnStart(annual []float64, target float64) []float64 {
	n := len(annual)
	w := UniformWeights(n)
	base := floats.Dot(w, annual)

	extreme := floats.MaxIdx(annual)
	if target < base {
		extreme = floats.MinIdx(annual)
	}
	span := annual[extreme] - base
	if span == 0 {
		return w
	}

	theta := (target - base) / span
	theta = math.Max(0, math.Min(1, theta))
	for i := range w {
		w[i] *= 1 - theta
	}
	w[extreme] += theta
	return w
}

// finishWeights clips round-off below zero and rescales to sum exactly to one
func finishWeights(x []float64) []float64 {
	w := make([]float64, len(x))
	for i, v := range x {
		if v > 0 && !math.IsNaN(v) {
			w[i] = v
		}
	}
	sum := floats.Sum(w)
	if sum <= 0 {
		return UniformWeights(len(x))
	}
	floats.Scale(1/sum, w)
	return w
}
