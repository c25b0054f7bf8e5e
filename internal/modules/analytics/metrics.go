// Package analytics derives the reported tables from an optimized allocation's realized
// daily returns: the metric table, the VaR/CVaR table, per-asset statistics, correlation,
// cumulative returns and VaR breaches.
package analytics

import (
	"fmt"
	"math"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/pkg/formulas"
)

// Metric names, in presentation order
const (
	MeanReturnMonthly = "Mean Return (Monthly)"
	MeanReturnAnnual  = "Mean Return (Annualised)"
	StdDevMonthly     = "Standard Deviation (Monthly)"
	StdDevAnnual      = "Standard Deviation (Annualised)"
	DownsideDeviation = "Downside Standard Deviation"
	MaximumDrawdown   = "Maximum Drawdown"
	Beta              = "Beta"
	Alpha             = "Alpha"
	SharpeRatio       = "Sharpe Ratio"
	SortinoRatio      = "Sortino Ratio"
	TreynorRatio      = "Treynor Ratio"
	CalmarRatio       = "Calmar Ratio"
	TrackingError     = "Tracking Error"
	InformationRatio  = "Information Ratio"
	Skewness          = "Skewness"
	ExcessKurtosis    = "Excess Kurtosis"
	PositivePeriods   = "Positive Periods"
)

// Metric kinds, telling clients how Value relates to Display
const (
	KindPercent = "percent" // Value is a fraction, displayed ×100 with a % sign
	KindRatio   = "ratio"
	KindCount   = "count"
)

// MetricNames lists every metric in presentation order
var MetricNames = []string{
	MeanReturnMonthly, MeanReturnAnnual, StdDevMonthly, StdDevAnnual, DownsideDeviation,
	MaximumDrawdown, Beta, Alpha, SharpeRatio, SortinoRatio, TreynorRatio, CalmarRatio,
	TrackingError, InformationRatio, Skewness, ExcessKurtosis, PositivePeriods,
}

// Metric is one row of the metric table.
// Value keeps full precision (fractions for percentage rows); nil when undefined.
type Metric struct {
	Name    string   `json:"name"`
	Value   *float64 `json:"value"`
	Display string   `json:"display"`
	Kind    string   `json:"kind"`
}

// MetricTable is the ordered set of performance metrics of one allocation
type MetricTable struct {
	Metrics  []Metric `json:"metrics"`
	Warnings []string `json:"warnings,omitempty"`
}

// Get returns the metric called name
func (t MetricTable) Get(name string) (Metric, bool) {
	for _, m := range t.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Value returns the raw value of name, NaN when absent or undefined
func (t MetricTable) Value(name string) float64 {
	m, ok := t.Get(name)
	if !ok || m.Value == nil {
		return math.NaN()
	}
	return *m.Value
}

// ComputeMetrics builds the metric table from the portfolio's daily returns and the benchmark's
// daily returns over the same dates. Undefined ratios (zero denominators) are reported as nil
// values with a warning rather than failing.
func ComputeMetrics(portfolio, benchmark []float64, riskFreeRate float64) (MetricTable, error) {
	if len(portfolio) != len(benchmark) {
		return MetricTable{}, fmt.Errorf("%w: %d portfolio returns, %d benchmark returns",
			domain.ErrLengthMismatch, len(portfolio), len(benchmark))
	}

	mean := formulas.Mean(portfolio)
	std := formulas.StdDev(portfolio)
	annualReturn := mean * formulas.TradingDaysPerYear
	annualStd := std * math.Sqrt(formulas.TradingDaysPerYear)
	excess := annualReturn - riskFreeRate

	downside := formulas.DownsideDeviation(portfolio)
	maxDD := formulas.MaxDrawdown(portfolio)

	beta, err := formulas.Beta(portfolio, benchmark)
	if err != nil {
		return MetricTable{}, err
	}
	benchmarkAnnual := formulas.AnnualizedReturn(benchmark)
	alpha := annualReturn - (riskFreeRate + beta*(benchmarkAnnual-riskFreeRate))

	te, err := formulas.TrackingError(portfolio, benchmark)
	if err != nil {
		return MetricTable{}, err
	}
	ir, err := formulas.InformationRatio(portfolio, benchmark)
	if err != nil {
		return MetricTable{}, err
	}

	positive, total := formulas.PositivePeriods(portfolio)
	positiveShare := math.NaN()
	if total > 0 {
		positiveShare = float64(positive) / float64(total)
	}

	t := MetricTable{Metrics: make([]Metric, 0, len(MetricNames))}
	t.percent(MeanReturnMonthly, mean*formulas.TradingDaysPerMonth)
	t.percent(MeanReturnAnnual, annualReturn)
	t.percent(StdDevMonthly, std*math.Sqrt(formulas.TradingDaysPerMonth))
	t.percent(StdDevAnnual, annualStd)
	t.percent(DownsideDeviation, downside)
	t.percent(MaximumDrawdown, maxDD)
	t.ratio(Beta, beta)
	t.percent(Alpha, alpha)
	t.ratio(SharpeRatio, formulas.Ratio(excess, annualStd))
	t.ratio(SortinoRatio, formulas.Ratio(excess, downside))
	t.ratio(TreynorRatio, formulas.Ratio(excess, beta))
	t.ratio(CalmarRatio, formulas.Ratio(excess, math.Abs(maxDD)))
	t.ratio(TrackingError, te)
	t.ratio(InformationRatio, ir)
	t.ratio(Skewness, formulas.Skewness(portfolio))
	t.ratio(ExcessKurtosis, 3-formulas.Kurtosis(portfolio))

	display := NotAvailable
	if total > 0 {
		display = fmt.Sprintf("%d out of %d (%s)", positive, total, FormatPercent(positiveShare))
	}
	t.add(PositivePeriods, positiveShare, display, KindCount)

	return t, nil
}

func (t *MetricTable) percent(name string, v float64) {
	t.add(name, v, FormatPercent(v), KindPercent)
}

func (t *MetricTable) ratio(name string, v float64) {
	t.add(name, v, FormatRatio(v), KindRatio)
}

func (t *MetricTable) add(name string, v float64, display, kind string) {
	value := optional(v)
	if value == nil {
		t.Warnings = append(t.Warnings, fmt.Sprintf("%s is undefined: %v", name, domain.ErrNumericDegeneracy))
	}
	t.Metrics = append(t.Metrics, Metric{Name: name, Value: value, Display: display, Kind: kind})
}
