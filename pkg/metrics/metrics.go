// Package metrics provides Prometheus instrumentation for gopush components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for gopush components.
type Registry struct {
	// Protocol Metrics
	Subscriptions      *prometheus.CounterVec
	SignalsNext        *prometheus.CounterVec
	SignalsError       *prometheus.CounterVec
	SignalsComplete    *prometheus.CounterVec
	Cancellations      *prometheus.CounterVec
	DemandRequested    *prometheus.CounterVec
	DroppedErrors      *prometheus.CounterVec
	ProtocolViolations *prometheus.CounterVec

	// Fan-Out Metrics
	RailSubscriptions *prometheus.CounterVec
	ActiveRails       *prometheus.GaugeVec

	// Queue Source Metrics
	QueueItemsPopped     *prometheus.CounterVec
	QueuePopLatency      *prometheus.HistogramVec
	QueueActiveConsumers *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry used by gopush components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Protocol Metrics
		Subscriptions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopush",
				Subsystem: "flow",
				Name:      "subscriptions_total",
				Help:      "Total number of subscriptions started",
			},
			[]string{"source_name"},
		),

		SignalsNext: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopush",
				Subsystem: "flow",
				Name:      "next_signals_total",
				Help:      "Total number of values delivered downstream",
			},
			[]string{"source_name"},
		),

		SignalsError: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopush",
				Subsystem: "flow",
				Name:      "error_signals_total",
				Help:      "Total number of error signals delivered downstream",
			},
			[]string{"source_name"},
		),

		SignalsComplete: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopush",
				Subsystem: "flow",
				Name:      "complete_signals_total",
				Help:      "Total number of completion signals delivered downstream",
			},
			[]string{"source_name"},
		),

		Cancellations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopush",
				Subsystem: "flow",
				Name:      "cancellations_total",
				Help:      "Total number of downstream cancellations",
			},
			[]string{"source_name"},
		),

		DemandRequested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopush",
				Subsystem: "flow",
				Name:      "demand_requested_total",
				Help:      "Total demand requested downstream (unbounded requests count as 1)",
			},
			[]string{"source_name"},
		),

		DroppedErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopush",
				Subsystem: "flow",
				Name:      "dropped_errors_total",
				Help:      "Total number of errors diverted to the dropped-error hook",
			},
			[]string{"source_name"},
		),

		ProtocolViolations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopush",
				Subsystem: "flow",
				Name:      "protocol_violations_total",
				Help:      "Total number of protocol violations (bad requests, resubscriptions)",
			},
			[]string{"source_name"},
		),

		// Fan-Out Metrics
		RailSubscriptions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopush",
				Subsystem: "parallel",
				Name:      "rail_subscriptions_total",
				Help:      "Total number of rail subscriptions",
			},
			[]string{"group_name"},
		),

		ActiveRails: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gopush",
				Subsystem: "parallel",
				Name:      "active_rails",
				Help:      "Number of rails currently subscribed",
			},
			[]string{"group_name"},
		),

		// Queue Source Metrics
		QueueItemsPopped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopush",
				Subsystem: "redisq",
				Name:      "items_popped_total",
				Help:      "Total number of items popped from queue sources",
			},
			[]string{"queue_key"},
		),

		QueuePopLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gopush",
				Subsystem: "redisq",
				Name:      "pop_duration_seconds",
				Help:      "Time spent waiting for queue pops",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"queue_key"},
		),

		QueueActiveConsumers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gopush",
				Subsystem: "redisq",
				Name:      "active_consumers",
				Help:      "Number of consumers registered on queue sources",
			},
			[]string{"queue_key"},
		),
	}
}
