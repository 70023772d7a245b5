package server

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bigfamingjia/ai-fortune-teller/internal/config"
)

// metrics are the collectors exposed on /metrics.
type metrics struct {
	// requests counts every response by route pattern and status code.
	requests *prometheus.CounterVec
	// charts counts computed charts by outcome: ok, invalid, range, computation.
	charts    *prometheus.CounterVec
	duration  prometheus.Histogram
	cacheHits prometheus.Counter
}

// newMetrics registers the server collectors on reg.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.MetricsNamespace,
				Name:      config.MetricRequests,
				Help:      config.MetricRequestsHelp,
			},
			[]string{config.LabelRoute, config.LabelCode},
		),
		charts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.MetricsNamespace,
				Name:      config.MetricCharts,
				Help:      config.MetricChartsHelp,
			},
			[]string{config.LabelOutcome},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: config.MetricsNamespace,
				Name:      config.MetricDuration,
				Help:      config.MetricDurationHelp,
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
		),
		cacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: config.MetricsNamespace,
				Name:      config.MetricCacheHits,
				Help:      config.MetricCacheHitsHelp,
			},
		),
	}
	for _, c := range []prometheus.Collector{m.requests, m.charts, m.duration, m.cacheHits} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrMetrics, err)
		}
	}
	return m, nil
}
