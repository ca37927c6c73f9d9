package promadapters

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AntonStoeckl/library-lending-go/recordstore"
)

var ErrNilRegistry = errors.New("prometheus registry must not be nil")

type vec[T any] struct {
	labelNames []string
	metric     T
}

// MetricsCollector implements recordstore.MetricsCollector with Prometheus histograms, counters and gauges.
type MetricsCollector struct {
	registry   *prometheus.Registry
	factory    promauto.Factory
	mu         sync.Mutex
	histograms map[string]vec[*prometheus.HistogramVec]
	counters   map[string]vec[*prometheus.CounterVec]
	gauges     map[string]vec[*prometheus.GaugeVec]
}

// NewMetricsCollector creates a collector registering its metrics on registry.
func NewMetricsCollector(registry *prometheus.Registry) (*MetricsCollector, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}

	return &MetricsCollector{
		registry:   registry,
		factory:    promauto.With(registry),
		histograms: make(map[string]vec[*prometheus.HistogramVec]),
		counters:   make(map[string]vec[*prometheus.CounterVec]),
		gauges:     make(map[string]vec[*prometheus.GaugeVec]),
	}, nil
}

// Registry returns the registry holding the collected metrics.
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// RecordDuration observes the duration in seconds.
func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.histograms[metric]
	if !ok {
		names := labelNames(labels)
		h = vec[*prometheus.HistogramVec]{
			labelNames: names,
			metric: m.factory.NewHistogramVec(prometheus.HistogramOpts{
				Name:    metric,
				Help:    "Duration of library operations in seconds",
				Buckets: prometheus.DefBuckets,
			}, names),
		}
		m.histograms[metric] = h
	}

	h.metric.WithLabelValues(labelValues(h.labelNames, labels)...).Observe(duration.Seconds())
}

// IncrementCounter adds one to the counter.
func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.counters[metric]
	if !ok {
		names := labelNames(labels)
		c = vec[*prometheus.CounterVec]{
			labelNames: names,
			metric: m.factory.NewCounterVec(prometheus.CounterOpts{
				Name: metric,
				Help: "Count of library operations",
			}, names),
		}
		m.counters[metric] = c
	}

	c.metric.WithLabelValues(labelValues(c.labelNames, labels)...).Inc()
}

// RecordValue sets the gauge.
func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.gauges[metric]
	if !ok {
		names := labelNames(labels)
		g = vec[*prometheus.GaugeVec]{
			labelNames: names,
			metric: m.factory.NewGaugeVec(prometheus.GaugeOpts{
				Name: metric,
				Help: "Current value of a library measurement",
			}, names),
		}
		m.gauges[metric] = g
	}

	g.metric.WithLabelValues(labelValues(g.labelNames, labels)...).Set(value)
}

// WriteToTextfile writes all metrics in the text exposition format, e.g. for the node exporter's
// textfile collector. The file is replaced atomically.
func (m *MetricsCollector) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// labelValues orders the values like names. Missing labels become empty, unknown labels are dropped.
func labelValues(names []string, labels map[string]string) []string {
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = labels[name]
	}

	return values
}

// Ensure MetricsCollector implements recordstore.MetricsCollector.
var _ recordstore.MetricsCollector = (*MetricsCollector)(nil)
