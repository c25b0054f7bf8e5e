package optimization

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Line search parameters
const (
	armijo          = 1e-4
	maxBacktracks   = 40
	backtrackFactor = 0.5
	rankTolerance   = 1e-12
)

// LinearEquality is the constraint Coef · w = Value
type LinearEquality struct {
	Coef  []float64
	Value float64
}

// Problem is the minimization of a smooth function over w ≥ 0 subject to linear equalities.
// With the budget constraint Σw = 1 among the equalities, w ≤ 1 holds implicitly.
type Problem struct {
	Func     func(w []float64) float64
	Grad     func(grad, w []float64)
	Equality []LinearEquality
}

// SolverSettings bounds the solver's work
type SolverSettings struct {
	MaxIterations int
	Tolerance     float64 // relative objective change treated as convergence
}

// SolverResult is the last iterate and how the solver stopped
type SolverResult struct {
	X          []float64
	F          float64
	Iterations int
	Converged  bool
	Status     string
}

// solve runs an active-set sequential quadratic programming method from a feasible x0.
//
// Each iteration restricts the problem to the face where the active bounds are held at zero,
// takes a quasi-Newton step in the null space of the equality constraints, and limits the
// step so no free weight turns negative. A weight that reaches zero joins the active set; on
// a stationary face the bound with the most negative multiplier is released. The Hessian
// approximation is a damped BFGS update.
func solve(p Problem, x0 []float64, settings SolverSettings) SolverResult {
	n := len(x0)
	x := append([]float64(nil), x0...)
	active := make([]bool, n)
	for i, v := range x {
		if v <= 0 {
			x[i] = 0
			active[i] = true
		}
	}

	gradTol := math.Sqrt(settings.Tolerance)
	res := SolverResult{X: x, F: p.Func(x)}
	g := make([]float64, n)
	p.Grad(g, x)
	if !finite(res.F) || !allFinite(g) {
		res.Status = "objective or gradient is not finite at the starting point"
		return res
	}

	b := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		b.SetSym(i, i, 1)
	}
	scaled := false
	released := -1
	pinned := make([]bool, n) // bounds that blocked a step of length zero right after release
	stalls := 0

	for iter := 1; iter <= settings.MaxIterations; iter++ {
		res.Iterations = iter
		for i := range x {
			if !active[i] && i != released && x[i] <= 0 {
				x[i] = 0
				active[i] = true
			}
		}
		f := newFace(p.Equality, active)

		gz := f.reducedGradient(g)
		if len(gz) == 0 || floats.Norm(gz, math.Inf(1)) <= gradTol {
			if i := f.releasable(g, active, pinned, gradTol); i >= 0 {
				active[i] = false
				released = i
				continue
			}
			res.Converged = true
			res.Status = "first-order optimality conditions satisfied"
			break
		}

		dir := f.newtonDirection(b, g)
		slope := floats.Dot(g, dir)
		if slope >= 0 || !allFinite(dir) || (released >= 0 && dir[released] < 0) {
			dir = f.steepestDirection(g)
			slope = floats.Dot(g, dir)
		}
		released = -1

		alphaMax, blocking := ratioTest(x, dir, active)
		alpha := math.Min(1, alphaMax)
		hitBound := alphaMax <= 1

		xNew := make([]float64, n)
		fNew := math.NaN()
		accepted := false
		for k := 0; k < maxBacktracks; k++ {
			for i := range xNew {
				xNew[i] = x[i] + alpha*dir[i]
				if active[i] || xNew[i] < 0 {
					xNew[i] = 0
				}
			}
			fNew = p.Func(xNew)
			if finite(fNew) && fNew <= res.F+armijo*alpha*slope {
				accepted = true
				break
			}
			alpha *= backtrackFactor
			hitBound = false
		}
		if !accepted {
			if i := f.releasable(g, active, pinned, gradTol); i >= 0 {
				active[i] = false
				released = i
				continue
			}
			res.Status = "line search could not decrease the objective"
			break
		}
		if hitBound && blocking >= 0 {
			xNew[blocking] = 0
			active[blocking] = true
			if alpha == 0 {
				pinned[blocking] = true
				continue
			}
		}

		gNew := make([]float64, n)
		p.Grad(gNew, xNew)
		if !allFinite(gNew) {
			res.X, res.F = xNew, fNew
			res.Status = "gradient is not finite"
			break
		}

		s := make([]float64, n)
		y := make([]float64, n)
		floats.SubTo(s, xNew, x)
		floats.SubTo(y, gNew, g)
		scaled = updateBFGS(b, s, y, scaled)

		change := math.Abs(res.F - fNew)
		x, g = xNew, gNew
		res.X, res.F = x, fNew

		if change <= settings.Tolerance*(1+math.Abs(fNew)) {
			stalls++
		} else {
			stalls = 0
		}
		if stalls >= 2 {
			if i := newFace(p.Equality, active).releasable(g, active, pinned, gradTol); i >= 0 {
				active[i] = false
				released = i
				stalls = 0
				continue
			}
			res.Converged = true
			res.Status = "objective change below tolerance"
			break
		}
	}

	if res.Status == "" {
		res.Status = "iteration limit reached"
	}
	return res
}

// face is the subspace where the active bounds hold at zero and the equalities hold.
type face struct {
	n    int
	eqs  []LinearEquality
	free []int
	u    mat.Dense // left singular vectors of the restricted equality matrix
	v    mat.Dense // right singular vectors of the restricted equality matrix
	sv   []float64
	rank int
	z    *mat.Dense // orthonormal null-space basis, |free| × k; nil when k = 0
}

func newFace(eqs []LinearEquality, active []bool) *face {
	f := &face{n: len(active), eqs: eqs}
	for i, isActive := range active {
		if !isActive {
			f.free = append(f.free, i)
		}
	}
	nf := len(f.free)
	if nf == 0 {
		return f
	}

	if len(eqs) == 0 {
		f.z = mat.NewDense(nf, nf, nil)
		for i := 0; i < nf; i++ {
			f.z.Set(i, i, 1)
		}
		return f
	}

	a := mat.NewDense(len(eqs), nf, nil)
	for r, eq := range eqs {
		for c, idx := range f.free {
			a.Set(r, c, eq.Coef[idx])
		}
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return f
	}
	svd.UTo(&f.u)
	svd.VTo(&f.v)
	f.sv = svd.Values(nil)
	for _, s := range f.sv {
		if s > rankTolerance*f.sv[0] {
			f.rank++
		}
	}

	if f.rank < nf {
		f.z = mat.DenseCopyOf(f.v.Slice(0, nf, f.rank, nf))
	}
	return f
}

// gather picks the free components of a full-length vector
func (f *face) gather(x []float64) []float64 {
	out := make([]float64, len(f.free))
	for c, idx := range f.free {
		out[c] = x[idx]
	}
	return out
}

// reducedGradient is Zᵀ g_F
func (f *face) reducedGradient(g []float64) []float64 {
	if f.z == nil {
		return nil
	}
	_, k := f.z.Dims()
	var out mat.VecDense
	out.MulVec(f.z.T(), mat.NewVecDense(len(f.free), f.gather(g)))
	gz := make([]float64, k)
	for i := range gz {
		gz[i] = out.AtVec(i)
	}
	return gz
}

// newtonDirection solves (ZᵀBZ) d = -Zᵀg and lifts Z d back to full length
func (f *face) newtonDirection(b *mat.SymDense, g []float64) []float64 {
	nf := len(f.free)
	_, k := f.z.Dims()

	bf := mat.NewDense(nf, nf, nil)
	for i, ii := range f.free {
		for j, jj := range f.free {
			bf.Set(i, j, b.At(ii, jj))
		}
	}
	var bz, h mat.Dense
	bz.Mul(bf, f.z)
	h.Mul(f.z.T(), &bz)

	hs := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			hs.SetSym(i, j, 0.5*(h.At(i, j)+h.At(j, i)))
		}
	}

	rhs := mat.NewVecDense(k, f.reducedGradient(g))
	rhs.ScaleVec(-1, rhs)

	var chol mat.Cholesky
	if !chol.Factorize(hs) {
		return f.steepestDirection(g)
	}
	var d mat.VecDense
	if err := chol.SolveVecTo(&d, rhs); err != nil {
		return f.steepestDirection(g)
	}
	return f.lift(&d)
}

// steepestDirection is the projected negative gradient -Z Zᵀ g
func (f *face) steepestDirection(g []float64) []float64 {
	gz := f.reducedGradient(g)
	d := mat.NewVecDense(len(gz), nil)
	for i, v := range gz {
		d.SetVec(i, -v)
	}
	return f.lift(d)
}

// lift maps reduced coordinates d to a full-length direction Z d, zero on active bounds
func (f *face) lift(d *mat.VecDense) []float64 {
	var pf mat.VecDense
	pf.MulVec(f.z, d)
	dir := make([]float64, f.n)
	for c, idx := range f.free {
		dir[idx] = pf.AtVec(c)
	}
	return dir
}

// equalityMultipliers is the least-squares solution ν of A_Fᵀ ν = g_F via the pseudo-inverse
func (f *face) equalityMultipliers(g []float64) []float64 {
	if len(f.eqs) == 0 || f.rank == 0 {
		return make([]float64, len(f.eqs))
	}
	gf := mat.NewVecDense(len(f.free), f.gather(g))

	var t mat.VecDense
	t.MulVec(f.v.T(), gf)

	nu := make([]float64, len(f.eqs))
	for k := 0; k < f.rank; k++ {
		scale := t.AtVec(k) / f.sv[k]
		for r := range nu {
			nu[r] += f.u.At(r, k) * scale
		}
	}
	return nu
}

// releasable returns the active, unpinned bound with the most negative Lagrange multiplier
// below -tol, or -1 when every such bound is binding.
func (f *face) releasable(g []float64, active, pinned []bool, tol float64) int {
	nu := f.equalityMultipliers(g)

	best, bestMu := -1, -tol
	for i, isActive := range active {
		if !isActive || pinned[i] {
			continue
		}
		mu := g[i]
		for r, eq := range f.eqs {
			mu -= nu[r] * eq.Coef[i]
		}
		if mu < bestMu {
			best, bestMu = i, mu
		}
	}
	return best
}

// ratioTest returns the largest step along dir keeping free weights non-negative and the
// index that blocks it (-1 when nothing blocks).
func ratioTest(x, dir []float64, active []bool) (float64, int) {
	alpha, blocking := math.Inf(1), -1
	for i := range x {
		if active[i] || dir[i] >= 0 {
			continue
		}
		if a := -x[i] / dir[i]; a < alpha {
			alpha, blocking = a, i
		}
	}
	return alpha, blocking
}

// updateBFGS applies a Powell-damped BFGS update to b. Before the first update the identity
// is rescaled by yᵀy/sᵀy. Returns whether that rescaling has happened.
func updateBFGS(b *mat.SymDense, s, y []float64, scaled bool) bool {
	n := len(s)
	sv := mat.NewVecDense(n, s)
	yv := mat.NewVecDense(n, append([]float64(nil), y...))

	sy := mat.Dot(sv, yv)
	if !scaled {
		if sy > 0 {
			gamma := mat.Dot(yv, yv) / sy
			for i := 0; i < n; i++ {
				b.SetSym(i, i, gamma)
			}
		}
		scaled = true
	}

	var bs mat.VecDense
	bs.MulVec(b, sv)
	sBs := mat.Dot(sv, &bs)
	if sBs <= 0 || !finite(sBs) {
		return scaled
	}

	if sy < 0.2*sBs {
		theta := 0.8 * sBs / (sBs - sy)
		yv.ScaleVec(theta, yv)
		yv.AddScaledVec(yv, 1-theta, &bs)
		sy = mat.Dot(sv, yv)
	}
	if sy <= 0 || !finite(sy) {
		return scaled
	}

	b.SymRankOne(b, -1/sBs, &bs)
	b.SymRankOne(b, 1/sy, yv)
	return scaled
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(xs []float64) bool {
	for _, v := range xs {
		if !finite(v) {
			return false
		}
	}
	return true
}
