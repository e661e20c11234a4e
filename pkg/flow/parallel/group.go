package parallel

import (
	"fmt"
	"sync/atomic"

	gperrors "github.com/vnykmshr/gopush/pkg/common/errors"
	"github.com/vnykmshr/gopush/pkg/flow"
)

// Rail is one lane of a multi-lane source exposed as an independently
// subscribable source, keyed by its zero-based lane index.
type Rail[T any] interface {
	flow.Source[T]

	// Key returns the rail's lane index.
	Key() int
}

// Group exposes the lanes of source as individual rails. Subscribing to the
// returned source delivers the rails as a finite sequence keyed 0..N-1 and
// only then subscribes the upstream to the lane adapters, so every rail
// reaches the consumer before the upstream can push into it.
//
// Each rail can be consumed at most once; its requests and cancellation
// compose through to the upstream lane. Cancelling only a subset of rails
// while others remain active leaves the upstream in an undefined state.
//
// Panics if source is nil.
func Group[T any](source Source[T]) flow.Source[Rail[T]] {
	if source == nil {
		panic("parallel: Group: source is nil")
	}
	return flow.SourceFunc[Rail[T]](func(sink flow.Sink[Rail[T]]) {
		n := source.Parallelism()

		rails := make([]Rail[T], n)
		laneSinks := make([]flow.Sink[T], n)
		for i := 0; i < n; i++ {
			rail := &railGroup[T]{key: i}
			rails[i] = rail
			laneSinks[i] = rail
		}

		// rails must reach the subscriber before the upstream starts pushing
		flow.FromSlice(rails).Subscribe(sink)

		source.Subscribe(laneSinks)
	})
}

// railTerminal latches a lane terminal that arrived before the rail found its
// consumer. A nil err means completion.
type railTerminal struct {
	err error
}

// railGroup is one lane adapter. It faces three parties: the rail consumer
// (via Subscribe and the flow.Subscription side), the upstream lane (via the
// flow.Sink side), and the group (which wires it into the lane array). The
// consumer may request demand before the upstream lane has activated; that
// demand accumulates in requested and is forwarded exactly once when the
// lane's handle arrives. Symmetrically, a lane terminal that fires before the
// consumer arrives is latched in terminal and replayed at subscribe time.
// Both handoffs claim their slot with a swap to zero so neither side can
// deliver twice.
type railGroup[T any] struct {
	key       int
	once      atomic.Int32
	upstream  atomic.Pointer[flow.Subscription]
	requested atomic.Int64
	actual    atomic.Pointer[flow.Sink[T]]
	terminal  atomic.Pointer[railTerminal]
}

func (r *railGroup[T]) Key() int { return r.key }

func (r *railGroup[T]) Subscribe(sink flow.Sink[T]) {
	if !r.once.CompareAndSwap(0, 1) {
		flow.SignalError(sink, fmt.Errorf("parallel: rail %d: %w", r.key, gperrors.ErrResubscribe))
		return
	}
	// the consumer must be visible before its handle can move demand
	r.actual.Store(&sink)
	sink.OnSubscribe(r)
	if term := r.terminal.Swap(nil); term != nil {
		r.deliverTerminal(sink, term)
	}
}

func (r *railGroup[T]) deliverTerminal(sink flow.Sink[T], term *railTerminal) {
	if term.err != nil {
		sink.OnError(term.err)
		return
	}
	sink.OnComplete()
}

func (r *railGroup[T]) OnSubscribe(s flow.Subscription) {
	if flow.SetOnce(&r.upstream, s) {
		if pending := r.requested.Swap(0); pending != 0 {
			s.Request(pending)
		}
	}
}

func (r *railGroup[T]) OnNext(value T) {
	// values are demand gated and demand only flows once the consumer is set
	(*r.actual.Load()).OnNext(value)
}

func (r *railGroup[T]) OnError(err error) {
	r.terminate(&railTerminal{err: err})
}

func (r *railGroup[T]) OnComplete() {
	r.terminate(&railTerminal{})
}

func (r *railGroup[T]) terminate(term *railTerminal) {
	if cell := r.actual.Load(); cell != nil {
		r.deliverTerminal(*cell, term)
		return
	}
	r.terminal.Store(term)
	// the consumer may have arrived while the terminal was latching;
	// whoever claims the latch delivers it
	if cell := r.actual.Load(); cell != nil {
		if claimed := r.terminal.Swap(nil); claimed != nil {
			r.deliverTerminal(*cell, claimed)
		}
	}
}

func (r *railGroup[T]) Request(n int64) {
	if n <= 0 {
		if cell := r.actual.Load(); cell != nil {
			(*cell).OnError(flow.BadRequest(n))
		}
		return
	}
	if cell := r.upstream.Load(); cell != nil {
		(*cell).Request(n)
		return
	}
	flow.AddDemand(&r.requested, n)
	// the lane may have activated while the demand was accumulating;
	// whoever observes the handle drains the counter, and the swap-to-zero
	// keeps the accumulated amount from being forwarded twice
	if cell := r.upstream.Load(); cell != nil {
		if pending := r.requested.Swap(0); pending != 0 {
			(*cell).Request(pending)
		}
	}
}

func (r *railGroup[T]) Cancel() {
	flow.Terminate(&r.upstream)
}
