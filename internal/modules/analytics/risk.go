package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/pkg/formulas"
)

// BreachLevel is the confidence level whose VaR defines a breach
const BreachLevel = 0.95

// RiskRow is the parametric VaR and the realized CVaR at one confidence level.
// Both are positive loss magnitudes as fractions of portfolio value.
// CVaR is nil when no daily return falls beyond the VaR threshold.
type RiskRow struct {
	Level       float64  `json:"level"`
	Label       string   `json:"label"`
	VaR         *float64 `json:"var"`
	CVaR        *float64 `json:"cvar"`
	VaRDisplay  string   `json:"var_display"`
	CVaRDisplay string   `json:"cvar_display"`
}

// RiskTable computes VaR = μ + σ·Φ⁻¹(level) and CVaR = -mean(r | r < -VaR) at the 90, 95
// and 99% levels.
func RiskTable(daily []float64) []RiskRow {
	rows := make([]RiskRow, 0, len(formulas.ConfidenceLevels))
	for _, level := range formulas.ConfidenceLevels {
		v := formulas.ParametricVaR(daily, level)
		cv := -formulas.TailMean(daily, v)
		rows = append(rows, RiskRow{
			Level:       level,
			Label:       fmt.Sprintf("%d%%", int(math.Round(level*100))),
			VaR:         optional(v),
			CVaR:        optional(cv),
			VaRDisplay:  FormatPercent(v),
			CVaRDisplay: FormatPercent(cv),
		})
	}
	return rows
}

// Breach is a day on which the portfolio lost more than VaR(95%)
type Breach struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"`
}

// BreachSeries is the daily return series with its VaR(95%) threshold and breach days
type BreachSeries struct {
	Threshold float64  `json:"threshold"` // -VaR(95%)
	Breaches  []Breach `json:"breaches"`
}

// VaRBreaches returns the days whose return fell below -VaR(95%)
func VaRBreaches(dates []time.Time, daily []float64) (BreachSeries, error) {
	if len(dates) != len(daily) {
		return BreachSeries{}, fmt.Errorf("%w: %d dates, %d returns", domain.ErrLengthMismatch, len(dates), len(daily))
	}
	threshold := -formulas.ParametricVaR(daily, BreachLevel)
	out := BreachSeries{Threshold: threshold, Breaches: []Breach{}}
	for i, r := range daily {
		if r < threshold {
			out.Breaches = append(out.Breaches, Breach{Date: dates[i], Return: r})
		}
	}
	return out, nil
}
