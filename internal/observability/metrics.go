package observability

import (
	"sync"
	"time"
)

// MetricsClient is the metrics contract used by repositories and engines.
// A Prometheus-backed implementation lives in metrics_prometheus.go; a
// recording in-memory implementation (below) backs unit tests.
type MetricsClient interface {
	IncrementCounter(name string, value float64)
	RecordGauge(name string, value float64)
	RecordHistogram(name string, value float64)
	StartTimer(name string, labels map[string]string) func()
}

// InMemoryMetrics accumulates counters/gauges/histograms for assertions in
// tests, grounded on the teacher's noop_metrics.go pattern but retaining
// the recorded values instead of discarding them.
type InMemoryMetrics struct {
	mu         sync.Mutex
	Counters   map[string]float64
	Gauges     map[string]float64
	Histograms map[string][]float64
}

// NewInMemoryMetrics creates an empty recorder.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		Counters:   make(map[string]float64),
		Gauges:     make(map[string]float64),
		Histograms: make(map[string][]float64),
	}
}

func (m *InMemoryMetrics) IncrementCounter(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counters[name] += value
}

func (m *InMemoryMetrics) RecordGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gauges[name] = value
}

func (m *InMemoryMetrics) RecordHistogram(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Histograms[name] = append(m.Histograms[name], value)
}

func (m *InMemoryMetrics) StartTimer(name string, labels map[string]string) func() {
	start := time.Now()
	return func() {
		m.RecordHistogram(name+"_duration_seconds", time.Since(start).Seconds())
	}
}
