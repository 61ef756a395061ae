package schedule

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Cancellation reasons reported by the cancellations_total counter.
const (
	reasonExplicit  = "explicit"
	reasonAll       = "all"
	reasonReplaced  = "replaced"
	reasonExhausted = "exhausted"
)

// metrics holds the Prometheus collectors of a controller.
type metrics struct {
	firings       *prometheus.CounterVec
	failures      *prometheus.CounterVec
	cancellations *prometheus.CounterVec
	registered    prometheus.Gauge
	duration      *prometheus.HistogramVec
}

func newMetrics() *metrics {
	return &metrics{
		firings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "schedule",
				Name:      "firings_total",
				Help:      "Total number of task firings",
			},
			[]string{"key"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "schedule",
				Name:      "failures_total",
				Help:      "Total number of failed task invocations",
			},
			[]string{"key"},
		),
		cancellations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "schedule",
				Name:      "cancellations_total",
				Help:      "Total number of cancelled tasks by reason",
			},
			[]string{"reason"},
		),
		registered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "schedule",
				Name:      "registered_tasks",
				Help:      "Number of tasks currently registered",
			},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "schedule",
				Name:      "invocation_duration_seconds",
				Help:      "Duration of task invocations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"key"},
		),
	}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.firings, m.failures, m.cancellations, m.registered, m.duration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
