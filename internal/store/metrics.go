package store

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records statement latency and failures. A nil *Metrics records nothing.
type Metrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "store_statement_duration_seconds",
			Help:    "Duration of store statements in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"dialect", "op"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "store_statement_failures_total",
			Help: "Store statements that failed for reasons other than an empty result",
		}, []string{"dialect", "op"}),
	}
}

func (m *Metrics) observe(d Dialect, op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(string(d), op).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, ErrNoRows) {
		m.failures.WithLabelValues(string(d), op).Inc()
	}
}
