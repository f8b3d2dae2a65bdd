package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineMetrics captures aggregation pipeline health signals.
type PipelineMetrics struct {
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
	fetchErrors *prometheus.CounterVec
}

var (
	pipelineOnce    sync.Once
	pipelineMetrics *PipelineMetrics
)

// Pipeline returns the process-wide pipeline metrics, registering them on
// first use.
func Pipeline() *PipelineMetrics {
	pipelineOnce.Do(func() {
		pipelineMetrics = &PipelineMetrics{
			runs: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "connect_pipeline_runs_total",
				Help: "Aggregation pipeline runs by outcome.",
			}, []string{"outcome"}),
			runDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "connect_pipeline_run_duration_seconds",
				Help:    "Wall-clock duration of a full aggregation run.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			}),
			fetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "connect_pipeline_fetch_errors_total",
				Help: "Soft-failed upstream calls by provider.",
			}, []string{"provider"}),
		}
	})
	return pipelineMetrics
}

// ObserveRun records one completed run.
func (m *PipelineMetrics) ObserveRun(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(seconds)
}

// ObserveFetchError records one soft-failed upstream call.
func (m *PipelineMetrics) ObserveFetchError(provider string) {
	if m == nil {
		return
	}
	m.fetchErrors.WithLabelValues(provider).Inc()
}
