package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analysesTotal *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	seriesLength  *prometheus.HistogramVec
	latency       *prometheus.HistogramVec
	cacheHits     *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		analysesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantpulse_analyses_total",
				Help: "Completed analyses by operation and method",
			},
			[]string{"operation", "method"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		seriesLength: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantpulse_series_length",
				Help:    "Input series length per operation",
				Buckets: prometheus.ExponentialBuckets(50, 2, 10),
			},
			[]string{"operation"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantpulse_cache_hits_total",
				Help: "Result cache hits by operation",
			},
			[]string{"operation"},
		),
	}
}

// RecordAnalysis records a completed analysis and which method produced it.
func (r *Recorder) RecordAnalysis(op, method string) {
	r.analysesTotal.WithLabelValues(op, method).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordSeriesLength records the size of an analyzed series.
func (r *Recorder) RecordSeriesLength(op string, n int) {
	r.seriesLength.WithLabelValues(op).Observe(float64(n))
}

// RecordCacheHit records a result served from cache.
func (r *Recorder) RecordCacheHit(op string) {
	r.cacheHits.WithLabelValues(op).Inc()
}
