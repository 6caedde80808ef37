package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder observes repository operations.
type MetricsRecorder interface {
	ObserveOperation(op, outcome string, elapsed time.Duration)
	SetDishCount(n int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveOperation(string, string, time.Duration) {}
func (noopMetrics) SetDishCount(int)                               {}

// PrometheusMetrics records operation counts, latencies and the current list
// size as Prometheus collectors.
type PrometheusMetrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
	dishes   prometheus.Gauge
}

// NewPrometheusMetrics builds the collectors and registers them on reg. A nil
// reg uses prometheus.DefaultRegisterer.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PrometheusMetrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chefmenu",
			Subsystem: "repository",
			Name:      "operations_total",
			Help:      "Dish repository operations by outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chefmenu",
			Subsystem: "repository",
			Name:      "operation_duration_seconds",
			Help:      "Latency of dish repository operations including store I/O.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		dishes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chefmenu",
			Subsystem: "repository",
			Name:      "dishes",
			Help:      "Number of dishes in the last list read or written.",
		}),
	}
	for _, c := range []prometheus.Collector{m.ops, m.duration, m.dishes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveOperation implements MetricsRecorder.
func (m *PrometheusMetrics) ObserveOperation(op, outcome string, elapsed time.Duration) {
	m.ops.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// SetDishCount implements MetricsRecorder.
func (m *PrometheusMetrics) SetDishCount(n int) {
	m.dishes.Set(float64(n))
}
