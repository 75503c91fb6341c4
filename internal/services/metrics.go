package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus instruments.
type Metrics struct {
	analyzeTotal    *prometheus.CounterVec
	analyzeDuration prometheus.Histogram
}

// NewMetrics registers the analysis metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		analyzeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabcast",
			Name:      "analyze_total",
			Help:      "Analysis calls by outcome and parsing strategy.",
		}, []string{"outcome", "strategy"}),
		analyzeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tabcast",
			Name:      "analyze_duration_seconds",
			Help:      "Wall time of a full analysis call.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observe(outcome, strategy string, seconds float64) {
	if m == nil {
		return
	}
	m.analyzeTotal.WithLabelValues(outcome, strategy).Inc()
	m.analyzeDuration.Observe(seconds)
}
