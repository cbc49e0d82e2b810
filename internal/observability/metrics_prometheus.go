package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements MetricsClient against a prometheus.Registry,
// grounded on the teacher's prometheus_metrics.go.
type PrometheusMetrics struct {
	registry   *prometheus.Registry
	counters   *prometheus.CounterVec
	gauges     *prometheus.GaugeVec
	histograms *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the three generic vectors the core uses;
// call sites pass a stable metric name as the "name" label value rather
// than registering a new collector per metric, keeping cardinality bounded.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	counters := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Count of named orchestration events.",
	}, []string{"name"})
	gauges := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gauge",
		Help:      "Named orchestration gauges.",
	}, []string{"name"})
	histograms := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "duration_seconds",
		Help:      "Named orchestration durations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"name"})

	registry.MustRegister(counters, gauges, histograms)

	return &PrometheusMetrics{registry: registry, counters: counters, gauges: gauges, histograms: histograms}
}

func (m *PrometheusMetrics) Registry() *prometheus.Registry { return m.registry }

func (m *PrometheusMetrics) IncrementCounter(name string, value float64) {
	m.counters.WithLabelValues(name).Add(value)
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64) {
	m.gauges.WithLabelValues(name).Set(value)
}

func (m *PrometheusMetrics) RecordHistogram(name string, value float64) {
	m.histograms.WithLabelValues(name).Observe(value)
}

func (m *PrometheusMetrics) StartTimer(name string, labels map[string]string) func() {
	start := time.Now()
	return func() {
		m.histograms.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
}
