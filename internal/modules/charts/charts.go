// Package charts renders the report tables as PNG images.
package charts

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aristath/frontier/internal/modules/analytics"
	"github.com/aristath/frontier/internal/modules/optimization"
	"github.com/vicanso/go-charts/v2"
)

// Chart kinds served by the API
const (
	KindFrontier   = "frontier"
	KindCumulative = "cumulative"
	KindAllocation = "allocation"
	KindBreaches   = "breaches"
)

// Kinds lists every supported chart kind
var Kinds = []string{KindFrontier, KindCumulative, KindAllocation, KindBreaches}

// ErrNotEnoughData is returned when a series has fewer than two points
var ErrNotEnoughData = errors.New("not enough data points")

// ErrUnknownKind is returned for a chart kind outside Kinds
var ErrUnknownKind = errors.New("unknown chart kind")

const (
	defaultWidth  = 900
	defaultHeight = 600
	xSplit        = 8
	dateLayout    = "2006-01-02"
	minPieWeight  = 1e-4
)

// ValidKind reports whether kind is one of Kinds
func ValidKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Frontier plots annual return against annual volatility along the efficient frontier.
// Both axes are in percent. Volatility is drawn as one evenly spaced category per frontier
// point, so horizontal distances do not scale with volatility.
func Frontier(points []optimization.FrontierPoint, selected analytics.Allocation) ([]byte, error) {
	if len(points) < 2 {
		return nil, ErrNotEnoughData
	}

	values := make([]float64, len(points))
	labels := make([]string, len(points))
	for i, p := range points {
		values[i] = p.TargetReturn * 100
		labels[i] = fmt.Sprintf("%.1f%%", p.Volatility*100)
	}
	yMin, yMax := paddedRange(values)

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc("Efficient Frontier", frontierSubtitle(selected)),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: xSplit}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(defaultWidth),
		charts.HeightOptionFunc(defaultHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render frontier chart: %w", err)
	}
	return p.Bytes()
}

func frontierSubtitle(selected analytics.Allocation) string {
	return fmt.Sprintf("optimized: return %.2f%% • volatility %.2f%% • x-axis: volatility per point, not to scale",
		selected.ReturnPercent, selected.VolatilityPercent)
}

// Cumulative plots the compounded portfolio and benchmark returns over time, in percent
func Cumulative(s analytics.CumulativeSeries, benchmark string) ([]byte, error) {
	if len(s.Dates) < 2 {
		return nil, ErrNotEnoughData
	}

	portfolio := scale(s.Portfolio, 100)
	bench := scale(s.Benchmark, 100)
	lo1, hi1 := paddedRange(portfolio)
	lo2, hi2 := paddedRange(bench)
	yMin, yMax := math.Min(lo1, lo2), math.Max(hi1, hi2)

	names := []string{"Portfolio", benchmark}
	seriesList := charts.NewSeriesListDataFromValues([][]float64{portfolio, bench}, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
	}

	p, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc("Cumulative Returns", strings.Join(names, " vs ")+" • %"),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: formatDates(s.Dates), BoundaryGap: charts.FalseFlag(), SplitNumber: xSplit}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(defaultWidth),
		charts.HeightOptionFunc(defaultHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render cumulative chart: %w", err)
	}
	return p.Bytes()
}

// Allocation draws the optimized weights as a pie, omitting negligible weights
func Allocation(a analytics.Allocation) ([]byte, error) {
	var values []float64
	var labels []string
	for _, e := range a.Entries {
		if e.Weight < minPieWeight {
			continue
		}
		values = append(values, e.Weight)
		labels = append(labels, fmt.Sprintf("%s (%.1f%%)", e.Ticker, e.Weight*100))
	}
	if len(values) == 0 {
		return nil, ErrNotEnoughData
	}

	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc("Portfolio Allocation"),
		charts.LegendOptionFunc(charts.LegendOption{Data: labels, Top: charts.PositionTop}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(defaultWidth),
		charts.HeightOptionFunc(defaultHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render allocation chart: %w", err)
	}
	return p.Bytes()
}

// Breaches plots daily portfolio returns against the constant -VaR(95%) threshold
func Breaches(dates []time.Time, daily []float64, series analytics.BreachSeries) ([]byte, error) {
	if len(daily) < 2 || len(dates) != len(daily) {
		return nil, ErrNotEnoughData
	}

	returns := scale(daily, 100)
	threshold := make([]float64, len(daily))
	for i := range threshold {
		threshold[i] = series.Threshold * 100
	}
	yMin, yMax := paddedRange(append(append([]float64(nil), returns...), threshold[0]))

	names := []string{"Daily Return", "VaR 95%"}
	seriesList := charts.NewSeriesListDataFromValues([][]float64{returns, threshold}, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
	}

	p, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc("VaR Breaches", fmt.Sprintf("%d days below %.2f%%", len(series.Breaches), series.Threshold*100)),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: formatDates(dates), BoundaryGap: charts.FalseFlag(), SplitNumber: xSplit}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(defaultWidth),
		charts.HeightOptionFunc(defaultHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render breach chart: %w", err)
	}
	return p.Bytes()
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(dateLayout)
	}
	return out
}

func scale(v []float64, k float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * k
	}
	return out
}

// paddedRange returns the min and max of values widened by 5% of the span
func paddedRange(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.01, 0.01)
	}
	return lo - pad, hi + pad
}
