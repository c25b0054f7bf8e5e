// Package metrics exposes service counters and latencies to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Recorder implements the cache and optimization metric hooks using Prometheus
type Recorder struct {
	cacheLookups *prometheus.CounterVec
	runs         *prometheus.CounterVec
	stageLatency *prometheus.HistogramVec
	iterations   *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// New registers the collectors with reg. Use prometheus.DefaultRegisterer in production
// and a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frontier_price_cache_lookups_total",
				Help: "Price cache lookups by outcome",
			},
			[]string{"result"},
		),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frontier_optimization_runs_total",
				Help: "Optimization runs by objective and outcome",
			},
			[]string{"objective", "status"},
		),
		stageLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "frontier_stage_duration_seconds",
				Help:    "Duration of each optimization run stage in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		iterations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "frontier_solver_iterations",
				Help:    "Solver iterations per optimization",
				Buckets: prometheus.LinearBuckets(10, 20, 10),
			},
			[]string{"objective"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frontier_http_requests_total",
				Help: "HTTP requests by route pattern, method and status",
			},
			[]string{"route", "method", "status"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "frontier_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

// RecordCacheLookup counts a price cache hit, miss or stale read
func (r *Recorder) RecordCacheLookup(result string) {
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordRun counts one optimization run
func (r *Recorder) RecordRun(objective, status string) {
	r.runs.WithLabelValues(objective, status).Inc()
}

// ObserveStage records how long a run stage took
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveIterations records the solver iteration count for an objective
func (r *Recorder) ObserveIterations(objective string, n int) {
	r.iterations.WithLabelValues(objective).Observe(float64(n))
}

// RecordHTTP records one served request. route should be the templated pattern.
func (r *Recorder) RecordHTTP(route, method, status string, d time.Duration) {
	r.httpRequests.WithLabelValues(route, method, status).Inc()
	r.httpLatency.WithLabelValues(route, method).Observe(d.Seconds())
}
