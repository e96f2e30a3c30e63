package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	t.Run("records pairs, errors and vectors", func(t *testing.T) {
		m := New(prometheus.NewRegistry())

		m.ObservePair("patients", time.Millisecond)
		m.ObservePair("patients", time.Millisecond)
		m.IncrementError("patients", "configuration")
		m.SetDistinctVectors("patients", 7)
		m.ObserveBatch(time.Second)

		assert.Equal(t, 2.0, testutil.ToFloat64(m.PairsScored.WithLabelValues("patients")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.ScoringErrors.WithLabelValues("patients", "configuration")))
		assert.Equal(t, 7.0, testutil.ToFloat64(m.DistinctVectors.WithLabelValues("patients")))
	})

	t.Run("nil metrics are safe", func(t *testing.T) {
		var m *Metrics
		assert.NotPanics(t, func() {
			m.ObservePair("x", time.Millisecond)
			m.IncrementError("x", "modifier")
			m.SetDistinctVectors("x", 1)
			m.ObserveBatch(time.Second)
		})
	})
}
