package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	observations  *prometheus.CounterVec
	postsFetched  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastSentiment *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		observations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockhark_observations_total",
				Help: "Total number of observations routed to a backend",
			},
			[]string{"backend", "symbol"},
		),
		postsFetched: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockhark_posts_fetched_total",
				Help: "Total number of posts fetched per source",
			},
			[]string{"source"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockhark_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastSentiment: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockhark_last_sentiment",
				Help: "Last aggregated sentiment for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockhark_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordObservation records an observation routed to a backend.
func (r *Recorder) RecordObservation(backend, symbol string) {
	r.observations.WithLabelValues(backend, symbol).Inc()
}

// RecordPostsFetched records posts fetched from a source.
func (r *Recorder) RecordPostsFetched(source string, n int) {
	r.postsFetched.WithLabelValues(source).Add(float64(n))
}

// RecordAggregation records the latest aggregated sentiment for a symbol.
func (r *Recorder) RecordAggregation(symbol string, sentiment float64) {
	r.lastSentiment.WithLabelValues(symbol).Set(sentiment)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
