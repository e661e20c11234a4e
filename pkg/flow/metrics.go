package flow

import (
	gperrors "github.com/vnykmshr/gopush/pkg/common/errors"
	"github.com/vnykmshr/gopush/pkg/metrics"
)

// WithMetrics wraps source so that every subscription, signal, request, and
// cancellation is counted in a Prometheus registry under the given name. With
// metrics disabled in the config the source is returned unwrapped.
func WithMetrics[T any](source Source[T], name string, config metrics.Config) Source[T] {
	if !config.Enabled {
		return source
	}

	registry := metrics.DefaultRegistry
	if config.Registry != nil {
		registry = config.Registry
	}

	return SourceFunc[T](func(sink Sink[T]) {
		registry.Subscriptions.WithLabelValues(name).Inc()
		source.Subscribe(&metricsSink[T]{sink: sink, name: name, registry: registry})
	})
}

// metricsSink counts signals on their way downstream and demand on its way
// upstream.
type metricsSink[T any] struct {
	sink     Sink[T]
	name     string
	registry *metrics.Registry
	upstream Subscription
}

func (m *metricsSink[T]) OnSubscribe(s Subscription) {
	m.upstream = s
	m.sink.OnSubscribe(m)
}

func (m *metricsSink[T]) OnNext(value T) {
	m.registry.SignalsNext.WithLabelValues(m.name).Inc()
	m.sink.OnNext(value)
}

func (m *metricsSink[T]) OnError(err error) {
	if gperrors.IsProtocolViolation(err) {
		m.registry.ProtocolViolations.WithLabelValues(m.name).Inc()
	}
	m.registry.SignalsError.WithLabelValues(m.name).Inc()
	m.sink.OnError(err)
}

func (m *metricsSink[T]) OnComplete() {
	m.registry.SignalsComplete.WithLabelValues(m.name).Inc()
	m.sink.OnComplete()
}

func (m *metricsSink[T]) Request(n int64) {
	if n == Unbounded {
		// an unbounded grant counts as a single request
		m.registry.DemandRequested.WithLabelValues(m.name).Inc()
	} else if n > 0 {
		m.registry.DemandRequested.WithLabelValues(m.name).Add(float64(n))
	}
	m.upstream.Request(n)
}

func (m *metricsSink[T]) Cancel() {
	m.registry.Cancellations.WithLabelValues(m.name).Inc()
	m.upstream.Cancel()
}
