// Package portfolio runs the end-to-end optimization: validation, return series, the chosen
// objective, the efficient frontier and the analytics tables of the resulting allocation.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/metrics"
	"github.com/aristath/frontier/internal/modules/analytics"
	"github.com/aristath/frontier/internal/modules/optimization"
	"github.com/aristath/frontier/internal/modules/returns"
	"github.com/aristath/frontier/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RunRecorder receives run outcomes and stage timings. Implemented by metrics.Recorder.
type RunRecorder interface {
	RecordRun(objective, status string)
	ObserveStage(stage string, d time.Duration)
	ObserveIterations(objective string, n int)
}

// Optimization is a solved allocation together with the data it was solved on
type Optimization struct {
	Config     domain.RunConfig
	Model      *optimization.Model
	Result     optimization.Result
	Allocation analytics.Allocation
	Daily      []float64 // Realized daily returns of the optimized weights
}

// Dataset returns the aligned return series the allocation was optimized on
func (o *Optimization) Dataset() *returns.Dataset {
	return o.Model.Dataset()
}

// Report is the complete output of one run
type Report struct {
	RunID          string                      `json:"run_id"`
	GeneratedAt    time.Time                   `json:"generated_at"`
	Tickers        []string                    `json:"tickers"`
	Benchmark      string                      `json:"benchmark"`
	Objective      domain.Objective            `json:"objective"`
	ObjectiveLabel string                      `json:"objective_label"`
	Start          string                      `json:"start_date"`
	End            string                      `json:"end_date"`
	RiskFreeRate   float64                     `json:"risk_free_rate"`
	Periods        int                         `json:"periods"`
	Converged      bool                        `json:"converged"`
	Iterations     int                         `json:"iterations"`
	Allocation     analytics.Allocation        `json:"allocation"`
	Metrics        analytics.MetricTable       `json:"metrics"`
	Risk           []analytics.RiskRow         `json:"risk"`
	Frontier       *optimization.Frontier      `json:"frontier"`
	Correlation    analytics.CorrelationMatrix `json:"correlation"`
	AssetStats     []analytics.AssetStat       `json:"asset_stats"`
	Cumulative     analytics.CumulativeSeries  `json:"cumulative"`
	TotalReturn    float64                     `json:"total_portfolio"` // compounded over the window
	BenchmarkTotal float64                     `json:"total_benchmark"`
	Breaches       analytics.BreachSeries      `json:"var_breaches"`
	Warnings       []string                    `json:"warnings"`
	Dates          []time.Time                 `json:"-"`
	Daily          []float64                   `json:"-"`
}

// Service orchestrates a portfolio optimization run.
//
// All failures before the allocation is solved abort the run; nothing downstream is
// computed. Solver non-convergence and undefined metrics become report warnings.
type Service struct {
	validator returns.Validator
	builder   *returns.Builder
	optimizer *optimization.Optimizer
	frontier  *optimization.FrontierEngine
	recorder  RunRecorder
	log       zerolog.Logger
}

// NewService creates a portfolio service. recorder may be nil.
func NewService(
	validator returns.Validator,
	builder *returns.Builder,
	optimizer *optimization.Optimizer,
	frontier *optimization.FrontierEngine,
	recorder RunRecorder,
	log zerolog.Logger,
) *Service {
	return &Service{
		validator: validator,
		builder:   builder,
		optimizer: optimizer,
		frontier:  frontier,
		recorder:  recorder,
		log:       log.With().Str("service", "portfolio").Logger(),
	}
}

// Optimize validates cfg, builds the aligned return series and solves the chosen objective
func (s *Service) Optimize(ctx context.Context, cfg domain.RunConfig) (*Optimization, error) {
	if err := s.validator.Validate(cfg); err != nil {
		return nil, err
	}

	started := time.Now()
	ds, err := s.builder.Build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.observe("returns", started)

	started = time.Now()
	model := optimization.NewModel(ds, cfg.RiskFreeRate)
	result, err := s.optimizer.Optimize(model, cfg.Objective)
	if err != nil {
		return nil, err
	}
	s.observe("optimize", started)
	if s.recorder != nil {
		s.recorder.ObserveIterations(string(cfg.Objective), result.Iterations)
	}

	ret, vol := model.Performance(result.Weights)
	return &Optimization{
		Config:     cfg,
		Model:      model,
		Result:     result,
		Allocation: analytics.NewAllocation(ds.Tickers, result.Weights, ret, vol),
		Daily:      ds.PortfolioDaily(result.Weights),
	}, nil
}

// Metrics computes the metric table of the optimized allocation against the benchmark
func (s *Service) Metrics(o *Optimization) (analytics.MetricTable, error) {
	return analytics.ComputeMetrics(o.Daily, o.Dataset().Benchmark, o.Config.RiskFreeRate)
}

// RiskTable computes VaR and CVaR of the optimized allocation at each confidence level
func (s *Service) RiskTable(o *Optimization) []analytics.RiskRow {
	return analytics.RiskTable(o.Daily)
}

// Frontier traces the efficient frontier and the Monte Carlo cloud for the allocation's assets
func (s *Service) Frontier(ctx context.Context, o *Optimization) (*optimization.Frontier, error) {
	started := time.Now()
	f, err := s.frontier.Build(ctx, o.Model)
	if err != nil {
		return nil, err
	}
	s.observe("frontier", started)
	return f, nil
}

// CorrelationMatrix returns the ticker × ticker correlation of daily returns
func (s *Service) CorrelationMatrix(o *Optimization) analytics.CorrelationMatrix {
	return analytics.Correlation(o.Dataset())
}

// Run performs a complete optimization and assembles the report
func (s *Service) Run(ctx context.Context, cfg domain.RunConfig) (report *Report, err error) {
	runID := uuid.New().String()
	log := s.log.With().Str("run_id", runID).Str("objective", string(cfg.Objective)).Logger()
	timer := utils.NewTimer("portfolio_run", log).WithThreshold(time.Minute)
	defer func() {
		s.recordRun(cfg.Objective, err)
		timer.Stop()
	}()

	o, err := s.Optimize(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Strs("tickers", cfg.Tickers).Msg("Optimization run aborted")
		return nil, err
	}

	var warnings []string
	if o.Result.Warning != "" {
		warnings = append(warnings, o.Result.Warning)
	}

	metricTable, err := s.Metrics(o)
	if err != nil {
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}
	warnings = append(warnings, metricTable.Warnings...)

	frontier, err := s.Frontier(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("failed to build efficient frontier: %w", err)
	}
	warnings = append(warnings, frontier.Warnings...)

	ds := o.Dataset()
	cumulative, err := analytics.CumulativeReturns(ds.Dates, o.Daily, ds.Benchmark)
	if err != nil {
		return nil, fmt.Errorf("failed to compute cumulative returns: %w", err)
	}
	totalReturn, benchmarkTotal := cumulative.Final()
	breaches, err := analytics.VaRBreaches(ds.Dates, o.Daily)
	if err != nil {
		return nil, fmt.Errorf("failed to compute VaR breaches: %w", err)
	}

	report = &Report{
		RunID:          runID,
		GeneratedAt:    time.Now().UTC(),
		Tickers:        append([]string(nil), ds.Tickers...),
		Benchmark:      s.builder.Benchmark(),
		Objective:      cfg.Objective,
		ObjectiveLabel: cfg.Objective.Label(),
		Start:          cfg.Start.Format(domain.DateLayout),
		End:            cfg.End.Format(domain.DateLayout),
		RiskFreeRate:   cfg.RiskFreeRate,
		Periods:        ds.NumPeriods(),
		Converged:      o.Result.Converged,
		Iterations:     o.Result.Iterations,
		Allocation:     o.Allocation,
		Metrics:        metricTable,
		Risk:           s.RiskTable(o),
		Frontier:       frontier,
		Correlation:    s.CorrelationMatrix(o),
		AssetStats:     analytics.AssetStats(ds, cfg.RiskFreeRate),
		Cumulative:     cumulative,
		TotalReturn:    totalReturn,
		BenchmarkTotal: benchmarkTotal,
		Breaches:       breaches,
		Warnings:       warnings,
		Dates:          append([]time.Time(nil), ds.Dates...),
		Daily:          o.Daily,
	}
	if report.Warnings == nil {
		report.Warnings = []string{}
	}

	log.Info().
		Int("assets", ds.NumAssets()).
		Int("periods", ds.NumPeriods()).
		Float64("annual_return", o.Allocation.AnnualReturn).
		Float64("annual_volatility", o.Allocation.AnnualVolatility).
		Bool("converged", o.Result.Converged).
		Int("warnings", len(warnings)).
		Msg("Optimization run complete")

	return report, nil
}

func (s *Service) observe(stage string, started time.Time) {
	if s.recorder != nil {
		s.recorder.ObserveStage(stage, time.Since(started))
	}
}

func (s *Service) recordRun(objective domain.Objective, err error) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordRun(string(objective), runStatus(err))
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return metrics.StatusOK
	case domain.IsInvalidInput(err):
		return metrics.StatusInvalid
	case errors.Is(err, domain.ErrPartialDataMissing):
		return metrics.StatusPartial
	default:
		return metrics.StatusFailed
	}
}
