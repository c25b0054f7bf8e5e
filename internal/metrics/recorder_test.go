package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordCacheLookup("hit")
	r.RecordCacheLookup("hit")
	r.RecordCacheLookup("miss")
	r.RecordRun("max_sharpe", StatusOK)
	r.RecordHTTP("/api/portfolio/optimize", "POST", "200", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("max_sharpe", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("/api/portfolio/optimize", "POST", "200")))
}

func TestRecorder_Histograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveStage("frontier", 1500*time.Millisecond)
	r.ObserveIterations("min_volatility", 42)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]uint64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			if h := m.GetHistogram(); h != nil {
				counts[f.GetName()] += h.GetSampleCount()
			}
		}
	}
	assert.Equal(t, uint64(1), counts["frontier_stage_duration_seconds"])
	assert.Equal(t, uint64(1), counts["frontier_solver_iterations"])
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
