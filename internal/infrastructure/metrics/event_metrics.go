package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EventMetrics contains Prometheus metrics for event publishing and handling.
type EventMetrics struct {
	EventsPublished *prometheus.CounterVec
	HandlerDuration *prometheus.HistogramVec
	HandlerRetries  *prometheus.CounterVec
	HandlerFailures *prometheus.CounterVec
	DeadLetterSize  prometheus.Gauge
}

// NewEventMetrics creates and registers event bus metrics with the given registerer.
func NewEventMetrics(registerer prometheus.Registerer) *EventMetrics {
	m := &EventMetrics{
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursery_events_published_total",
				Help: "Total number of events published to the event bus",
			},
			[]string{"event_type"},
		),
		HandlerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coursery_event_handler_duration_seconds",
				Help:    "Time spent in a single event handler invocation",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"event_type"},
		),
		HandlerRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursery_event_handler_retries_total",
				Help: "Total number of retry attempts for failed event handlers",
			},
			[]string{"event_type"},
		),
		HandlerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursery_event_handler_failures_total",
				Help: "Total number of handlers that exhausted all retries",
			},
			[]string{"event_type"},
		),
		DeadLetterSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coursery_event_dead_letters",
			Help: "Current number of entries in the dead letter queue",
		}),
	}

	registerer.MustRegister(
		m.EventsPublished,
		m.HandlerDuration,
		m.HandlerRetries,
		m.HandlerFailures,
		m.DeadLetterSize,
	)

	return m
}
