package flow

import (
	"sync/atomic"

	gperrors "github.com/vnykmshr/gopush/pkg/common/errors"
)

// emptySubscription is the degenerate, already-terminated handle used to
// satisfy the single-handle invariant when a stream fails before a real
// subscription exists. It accepts no demand and ignores cancellation.
type emptySubscription struct{}

func (emptySubscription) Request(int64) {}
func (emptySubscription) Cancel()       {}

var emptySub Subscription = emptySubscription{}

// cancelledCell is the marker stored by Terminate. Pointer identity
// distinguishes it from any live subscription.
var cancelledCell = &emptySub

// SignalError pairs sink with a degenerate handle and delivers exactly one
// error signal. It is the handle-less error path for failures that occur
// before the source produced a real subscription.
func SignalError[T any](sink Sink[T], err error) {
	sink.OnSubscribe(emptySub)
	sink.OnError(err)
}

// SignalComplete pairs sink with a degenerate handle and delivers exactly one
// completion signal. Used by sources that are empty at subscribe time.
func SignalComplete[T any](sink Sink[T]) {
	sink.OnSubscribe(emptySub)
	sink.OnComplete()
}

// SetOnce stores s into ref exactly once. If ref already holds a live
// subscription the duplicate is cancelled and reported to the dropped-error
// hook; if ref was terminated the incoming subscription is just cancelled.
// Returns true if s was stored.
func SetOnce(ref *atomic.Pointer[Subscription], s Subscription) bool {
	if ref.CompareAndSwap(nil, &s) {
		return true
	}
	s.Cancel()
	if ref.Load() != cancelledCell {
		DropError(gperrors.NewOperationError("flow", "OnSubscribe", gperrors.ErrResubscribe).
			WithContext("subscription already set"))
	}
	return false
}

// Terminate atomically marks ref terminated and cancels whatever subscription
// it held. Idempotent; a subscription set after termination is cancelled by
// SetOnce.
func Terminate(ref *atomic.Pointer[Subscription]) {
	if prev := ref.Swap(cancelledCell); prev != nil && prev != cancelledCell {
		(*prev).Cancel()
	}
}

// IsTerminated reports whether Terminate has been called on ref.
func IsTerminated(ref *atomic.Pointer[Subscription]) bool {
	return ref.Load() == cancelledCell
}
