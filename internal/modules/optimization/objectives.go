package optimization

import (
	"fmt"
	"math"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/returns"
	"github.com/aristath/frontier/pkg/formulas"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// cvarObjectiveLevel is the confidence level of the CVaR objective
const cvarObjectiveLevel = 0.95

// fdStep is the central-difference step for objectives without an analytic gradient
const fdStep = 1e-6

// Objective is a scalar function of the weights to be minimized.
// "Maximize X" objectives return -X.
type Objective struct {
	Key  domain.Objective
	Func func(w []float64) float64
	Grad func(grad, w []float64)
}

// Model bundles the per-run inputs every objective reads: aligned daily returns, their mean
// vector and covariance, the benchmark series and the risk-free rate.
type Model struct {
	data         *returns.Dataset
	mean         []float64
	cov          *mat.SymDense
	riskFreeRate float64
}

// NewModel derives the mean vector and covariance from ds once
func NewModel(ds *returns.Dataset, riskFreeRate float64) *Model {
	return &Model{
		data:         ds,
		mean:         ds.MeanReturns(),
		cov:          ds.Covariance(),
		riskFreeRate: riskFreeRate,
	}
}

// NumAssets returns the dimension of the weight vector
func (m *Model) NumAssets() int {
	return len(m.mean)
}

// RiskFreeRate returns the annual risk-free rate
func (m *Model) RiskFreeRate() float64 {
	return m.riskFreeRate
}

// Dataset returns the aligned return series the model was built from
func (m *Model) Dataset() *returns.Dataset {
	return m.data
}

// AnnualMeans returns the mean daily return per asset scaled by 252
func (m *Model) AnnualMeans() []float64 {
	out := make([]float64, len(m.mean))
	for i, v := range m.mean {
		out[i] = v * formulas.TradingDaysPerYear
	}
	return out
}

// Performance evaluates the annualized return and volatility of w
func (m *Model) Performance(w []float64) (annualReturn, annualVolatility float64) {
	return Performance(w, m.mean, m.cov)
}

// Objective returns the named objective bound to this model
func (m *Model) Objective(key domain.Objective) (Objective, error) {
	switch key {
	case domain.ObjectiveMaxSharpe:
		return Objective{Key: key, Func: m.negSharpe, Grad: m.negSharpeGrad}, nil
	case domain.ObjectiveMinVolatility:
		return m.volatilityObjective(), nil
	case domain.ObjectiveMaxSortino:
		return m.numeric(key, m.negSortino), nil
	case domain.ObjectiveMinTrackingError:
		return m.numeric(key, m.trackingError), nil
	case domain.ObjectiveMaxInformationRatio:
		return m.numeric(key, m.negInformationRatio), nil
	case domain.ObjectiveMinCVaR:
		return m.numeric(key, m.conditionalVaR), nil
	default:
		return Objective{}, fmt.Errorf("%w: %q", domain.ErrUnknownObjective, key)
	}
}

func (m *Model) volatilityObjective() Objective {
	return Objective{Key: domain.ObjectiveMinVolatility, Func: m.volatility, Grad: m.volatilityGrad}
}

// numeric pairs f with a central finite-difference gradient
func (m *Model) numeric(key domain.Objective, f func([]float64) float64) Objective {
	settings := &fd.Settings{Formula: fd.Central, Step: fdStep}
	return Objective{
		Key:  key,
		Func: f,
		Grad: func(grad, w []float64) {
			fd.Gradient(grad, f, w, settings)
		},
	}
}

// negSharpe = -(R(w) - rf) / σ(w)
func (m *Model) negSharpe(w []float64) float64 {
	ret, vol := m.Performance(w)
	return -formulas.Ratio(ret-m.riskFreeRate, vol)
}

// ∇[-(R - rf)/σ] = -(σ∇R - (R - rf)∇σ) / σ²
func (m *Model) negSharpeGrad(grad, w []float64) {
	ret, vol := m.Performance(w)
	if vol == 0 {
		fillNaN(grad)
		return
	}
	sigmaW := m.covTimes(w)
	excess := ret - m.riskFreeRate
	for i := range grad {
		dRet := m.mean[i] * formulas.TradingDaysPerYear
		dVol := formulas.TradingDaysPerYear * sigmaW[i] / vol
		grad[i] = -(vol*dRet - excess*dVol) / (vol * vol)
	}
}

// volatility = σ(w)
func (m *Model) volatility(w []float64) float64 {
	_, vol := m.Performance(w)
	return vol
}

// ∇σ = 252 Σw / σ
func (m *Model) volatilityGrad(grad, w []float64) {
	_, vol := m.Performance(w)
	if vol == 0 {
		for i := range grad {
			grad[i] = 0
		}
		return
	}
	sigmaW := m.covTimes(w)
	for i := range grad {
		grad[i] = formulas.TradingDaysPerYear * sigmaW[i] / vol
	}
}

// negSortino = -(mean(d)×252 - rf) / downsideDeviation(d), d = daily portfolio returns
func (m *Model) negSortino(w []float64) float64 {
	daily := m.data.PortfolioDaily(w)
	return -formulas.Ratio(formulas.AnnualizedReturn(daily)-m.riskFreeRate, formulas.DownsideDeviation(daily))
}

// trackingError = std(d - b) × √252 over the aligned benchmark
func (m *Model) trackingError(w []float64) float64 {
	te, err := formulas.TrackingError(m.data.PortfolioDaily(w), m.data.Benchmark)
	if err != nil {
		return math.NaN()
	}
	return te
}

// negInformationRatio = -(mean(d)×252 - mean(b)×252) / trackingError
func (m *Model) negInformationRatio(w []float64) float64 {
	ir, err := formulas.InformationRatio(m.data.PortfolioDaily(w), m.data.Benchmark)
	if err != nil {
		return math.NaN()
	}
	return -ir
}

// conditionalVaR is the negated mean of daily returns below -VaR(95%).
// The value is a positive loss magnitude, so smaller means less tail risk.
// NaN when no return falls in the tail.
func (m *Model) conditionalVaR(w []float64) float64 {
	return formulas.ConditionalVaR(m.data.PortfolioDaily(w), cvarObjectiveLevel)
}

func (m *Model) covTimes(w []float64) []float64 {
	var out mat.VecDense
	out.MulVec(m.cov, mat.NewVecDense(len(w), w))
	return out.RawVector().Data
}

func fillNaN(dst []float64) {
	for i := range dst {
		dst[i] = math.NaN()
	}
}
