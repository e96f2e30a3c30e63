// Package metrics exposes Prometheus metrics for pair scoring
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the scoring engine and batch runner.
// All methods are no-ops on a nil *Metrics.
type Metrics struct {
	// Pairs scored by configuration
	PairsScored *prometheus.CounterVec

	// Scoring failures by configuration and reason
	ScoringErrors *prometheus.CounterVec

	// Distinct match vectors observed by configuration
	DistinctVectors *prometheus.GaugeVec

	// Time spent scoring a single pair
	ScoreLatency prometheus.Histogram

	// Time spent on a whole batch run
	BatchLatency prometheus.Histogram
}

// New creates a Metrics instance registered with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PairsScored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clover_pairs_scored_total",
			Help: "Total record pairs scored by matching configuration",
		}, []string{"config"}),

		ScoringErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clover_scoring_errors_total",
			Help: "Total record pairs that failed to score by configuration and reason",
		}, []string{"config", "reason"}), // reason: "configuration", "modifier", "sink"

		DistinctVectors: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "clover_distinct_match_vectors",
			Help: "Number of distinct match vectors observed by matching configuration",
		}, []string{"config"}),

		ScoreLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "clover_score_pair_duration_seconds",
			Help:    "Duration of scoring one record pair",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),

		BatchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "clover_batch_duration_seconds",
			Help:    "Duration of a batch scoring run",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
	}
}

// ObservePair records one scored pair and its duration
func (m *Metrics) ObservePair(config string, d time.Duration) {
	if m != nil {
		m.PairsScored.WithLabelValues(config).Inc()
		m.ScoreLatency.Observe(d.Seconds())
	}
}

// IncrementError records a failed pair
func (m *Metrics) IncrementError(config, reason string) {
	if m != nil {
		m.ScoringErrors.WithLabelValues(config, reason).Inc()
	}
}

// SetDistinctVectors records the size of a frequency table
func (m *Metrics) SetDistinctVectors(config string, n int) {
	if m != nil {
		m.DistinctVectors.WithLabelValues(config).Set(float64(n))
	}
}

// ObserveBatch records the duration of a batch run
func (m *Metrics) ObserveBatch(d time.Duration) {
	if m != nil {
		m.BatchLatency.Observe(d.Seconds())
	}
}
