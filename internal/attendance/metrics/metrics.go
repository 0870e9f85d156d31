// Package metrics exposes attendance engine instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts attendance outcomes and measures engine latency. A nil
// receiver is a no-op so tests can run without a registry.
type Metrics struct {
	Outcomes      *prometheus.CounterVec
	EngineLatency *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "geoattend_attendance_outcomes_total",
			Help: "Attendance attempts by action and outcome reason",
		}, []string{"action", "outcome"}),
		EngineLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geoattend_attendance_engine_duration_seconds",
			Help:    "Attendance engine execution duration by action",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"action"}),
	}
}

// RecordOutcome counts one attempt. Successful attempts use outcome "ok";
// rejections use a short reason tag.
func (m *Metrics) RecordOutcome(action, outcome string) {
	if m != nil {
		m.Outcomes.WithLabelValues(action, outcome).Inc()
	}
}

// ObserveEngine records one engine execution's duration.
func (m *Metrics) ObserveEngine(action string, d time.Duration) {
	if m != nil {
		m.EngineLatency.WithLabelValues(action).Observe(d.Seconds())
	}
}
