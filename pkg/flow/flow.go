package flow

import "math"

// Unbounded is the demand sentinel for effectively infinite demand. Demand
// arithmetic saturates here instead of overflowing.
const Unbounded int64 = math.MaxInt64

// Subscription is the flow-control handle shared by a source and a sink for
// the lifetime of one subscription. The sink calls Request and Cancel; the
// source consumes the granted demand when emitting. Both methods are safe to
// call from any goroutine at any time and never block.
type Subscription interface {
	// Request adds n to the outstanding demand. n must be positive or
	// Unbounded; a non-positive amount is a protocol violation reported to
	// the owning sink as an error signal.
	Request(n int64)

	// Cancel stops the stream. It is idempotent; once observed by the
	// source, no further signal is delivered.
	Cancel()
}

// Sink consumes a stream. For every subscription it receives exactly one
// OnSubscribe call before any other signal, then zero or more OnNext calls,
// then at most one terminal OnError or OnComplete. Signals on a single
// subscription are never delivered concurrently with each other.
type Sink[T any] interface {
	OnSubscribe(s Subscription)
	OnNext(value T)
	OnError(err error)
	OnComplete()
}

// Source pushes a sequence of values to a sink under the sink's demand
// control. Subscribe never returns an error: every failure, including
// assembly-adjacent ones discovered at subscribe time, is delivered through
// the sink's error signal. Most sources may be subscribed repeatedly by
// different sinks; single-use sources reject a second subscription with an
// error signal.
type Source[T any] interface {
	Subscribe(sink Sink[T])
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[T any] func(Sink[T])

// Subscribe calls f(sink).
func (f SourceFunc[T]) Subscribe(sink Sink[T]) { f(sink) }
