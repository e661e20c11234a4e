package parallel

import (
	"sync/atomic"

	"github.com/vnykmshr/gopush/pkg/flow"
	"github.com/vnykmshr/gopush/pkg/metrics"
)

// GroupWithMetrics is Group with Prometheus instrumentation: each rail
// subscription is counted under the given group name, and the active-rails
// gauge tracks rails that are subscribed and not yet terminated or cancelled.
// With metrics disabled in the config it behaves exactly like Group.
func GroupWithMetrics[T any](source Source[T], name string, config metrics.Config) flow.Source[Rail[T]] {
	group := Group(source)
	if !config.Enabled {
		return group
	}

	registry := metrics.DefaultRegistry
	if config.Registry != nil {
		registry = config.Registry
	}

	return flow.Map(group, func(rail Rail[T]) (Rail[T], error) {
		return &metricsRail[T]{rail: rail, name: name, registry: registry}, nil
	})
}

// metricsRail wraps one rail, counting its subscription and tracking its
// active window.
type metricsRail[T any] struct {
	rail     Rail[T]
	name     string
	registry *metrics.Registry
}

func (m *metricsRail[T]) Key() int { return m.rail.Key() }

func (m *metricsRail[T]) Subscribe(sink flow.Sink[T]) {
	m.registry.RailSubscriptions.WithLabelValues(m.name).Inc()
	m.registry.ActiveRails.WithLabelValues(m.name).Inc()
	m.rail.Subscribe(&railSink[T]{sink: sink, name: m.name, registry: m.registry})
}

// railSink decrements the active-rails gauge exactly once, on whichever of
// terminal signal or cancellation comes first.
type railSink[T any] struct {
	sink     flow.Sink[T]
	name     string
	registry *metrics.Registry
	upstream flow.Subscription
	closed   atomic.Bool
}

func (r *railSink[T]) retire() {
	if r.closed.CompareAndSwap(false, true) {
		r.registry.ActiveRails.WithLabelValues(r.name).Dec()
	}
}

func (r *railSink[T]) OnSubscribe(s flow.Subscription) {
	r.upstream = s
	r.sink.OnSubscribe(r)
}

func (r *railSink[T]) OnNext(value T) {
	r.sink.OnNext(value)
}

func (r *railSink[T]) OnError(err error) {
	r.retire()
	r.sink.OnError(err)
}

func (r *railSink[T]) OnComplete() {
	r.retire()
	r.sink.OnComplete()
}

func (r *railSink[T]) Request(n int64) {
	r.upstream.Request(n)
}

func (r *railSink[T]) Cancel() {
	r.retire()
	r.upstream.Cancel()
}
