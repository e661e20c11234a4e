package flow

import "sync/atomic"

// Scalar sink states. The state machine moves monotonically towards
// terminated; the value is delivered on the transition that first observes
// both a value and outstanding demand.
const (
	scalarNone       int32 = iota // neither value nor request yet
	scalarHasRequest              // downstream requested, value not computed
	scalarHasValue                // value ready, downstream has not requested
	scalarTerminated              // delivered, errored, or cancelled
)

// DeferredScalarSink adapts a downstream sink that will receive at most one
// value computed at some later point, for example the result of a reduction.
// The value is held until the downstream has requested demand, then delivered
// as a single OnNext followed immediately by OnComplete. All transitions are
// lock-free.
//
// The owning operator passes the DeferredScalarSink (or a wrapper) to the
// downstream's OnSubscribe and feeds it through Complete or Error.
type DeferredScalarSink[T any] struct {
	actual Sink[T]
	state  atomic.Int32
	value  T
}

// NewDeferredScalarSink wraps actual in a deferred scalar delivery adapter.
func NewDeferredScalarSink[T any](actual Sink[T]) *DeferredScalarSink[T] {
	return &DeferredScalarSink[T]{actual: actual}
}

// Downstream returns the wrapped sink.
func (d *DeferredScalarSink[T]) Downstream() Sink[T] { return d.actual }

// Request records downstream demand. If the scalar value is already computed
// it is delivered now; otherwise delivery happens when Complete is called.
func (d *DeferredScalarSink[T]) Request(n int64) {
	if n <= 0 {
		d.Error(BadRequest(n))
		return
	}
	for {
		switch state := d.state.Load(); state {
		case scalarNone:
			if d.state.CompareAndSwap(scalarNone, scalarHasRequest) {
				return
			}
		case scalarHasValue:
			if d.state.CompareAndSwap(scalarHasValue, scalarTerminated) {
				d.actual.OnNext(d.value)
				d.actual.OnComplete()
				return
			}
		default:
			// already requested or terminated
			return
		}
	}
}

// Cancel suppresses any pending or future delivery.
func (d *DeferredScalarSink[T]) Cancel() {
	d.state.Store(scalarTerminated)
}

// Complete records the computed scalar and delivers it as soon as downstream
// demand exists, followed by completion.
func (d *DeferredScalarSink[T]) Complete(value T) {
	for {
		switch state := d.state.Load(); state {
		case scalarHasRequest:
			if d.state.CompareAndSwap(scalarHasRequest, scalarTerminated) {
				d.actual.OnNext(value)
				d.actual.OnComplete()
				return
			}
		case scalarNone:
			d.value = value
			if d.state.CompareAndSwap(scalarNone, scalarHasValue) {
				return
			}
		default:
			// duplicate terminal or already cancelled
			return
		}
	}
}

// Error delivers err downstream unless the sink already terminated, in which
// case the error is diverted to the dropped-error hook.
func (d *DeferredScalarSink[T]) Error(err error) {
	if d.state.Swap(scalarTerminated) == scalarTerminated {
		DropError(err)
		return
	}
	d.actual.OnError(err)
}
