package flow

import (
	"sync/atomic"

	gperrors "github.com/vnykmshr/gopush/pkg/common/errors"
)

// Using opens a resource for each subscription, streams the source derived
// from that resource, and releases the resource exactly once no matter how
// the stream ends: completion, error, or cancellation.
//
// With eager cleanup the resource is released just before the terminal signal
// reaches the sink; a cleanup failure then replaces a completion or is
// attached to an in-flight error as a suppressed cause. With lazy cleanup the
// terminal signal is delivered first and a later cleanup failure has no
// delivery target, so it goes to the dropped-error hook.
//
// Supplier failures are signalled without running cleanup (no resource was
// produced). Factory failures, including a nil source, release the resource
// first and signal the combined error. Panics if any collaborator is nil.
func Using[T, S any](supplier func() (S, error), factory func(S) (Source[T], error), cleanup func(S) error, eager bool) Source[T] {
	if supplier == nil {
		panic("flow: Using: supplier is nil")
	}
	if factory == nil {
		panic("flow: Using: factory is nil")
	}
	if cleanup == nil {
		panic("flow: Using: cleanup is nil")
	}
	return SourceFunc[T](func(sink Sink[T]) {
		resource, err := supplier()
		if err != nil {
			SignalError(sink, err)
			return
		}

		source, err := factory(resource)
		if err == nil && source == nil {
			err = gperrors.ErrNilSource
		}
		if err != nil {
			// the resource must not leak on this path
			SignalError(sink, gperrors.Compose(err, cleanup(resource)))
			return
		}

		source.Subscribe(&usingSink[T, S]{
			sink:     sink,
			resource: resource,
			cleanup:  cleanup,
			eager:    eager,
		})
	})
}

// usingSink relays the inner stream and owns the resource until its one-shot
// cleanup bit flips. The bit is shared by the terminal paths and Cancel so a
// cancellation racing a terminal signal cannot double-clean.
type usingSink[T, S any] struct {
	sink     Sink[T]
	resource S
	cleanup  func(S) error
	eager    bool
	upstream Subscription
	wip      atomic.Int32
}

func (u *usingSink[T, S]) OnSubscribe(s Subscription) {
	if u.upstream != nil {
		s.Cancel()
		DropError(gperrors.NewOperationError("flow", "OnSubscribe", gperrors.ErrResubscribe).
			WithContext("subscription already set"))
		return
	}
	u.upstream = s
	u.sink.OnSubscribe(u)
}

func (u *usingSink[T, S]) Request(n int64) {
	u.upstream.Request(n)
}

func (u *usingSink[T, S]) Cancel() {
	if u.wip.CompareAndSwap(0, 1) {
		u.upstream.Cancel()
		if err := u.cleanup(u.resource); err != nil {
			DropError(err)
		}
	}
}

func (u *usingSink[T, S]) OnNext(value T) {
	u.sink.OnNext(value)
}

func (u *usingSink[T, S]) OnError(err error) {
	if u.eager && u.wip.CompareAndSwap(0, 1) {
		err = gperrors.Compose(err, u.cleanup(u.resource))
	}

	u.sink.OnError(err)

	if !u.eager {
		u.cleanupAfter()
	}
}

func (u *usingSink[T, S]) OnComplete() {
	if u.eager && u.wip.CompareAndSwap(0, 1) {
		if err := u.cleanup(u.resource); err != nil {
			u.sink.OnError(err)
			return
		}
	}

	u.sink.OnComplete()

	if !u.eager {
		u.cleanupAfter()
	}
}

// cleanupAfter runs lazy cleanup once the terminal signal is already out.
func (u *usingSink[T, S]) cleanupAfter() {
	if u.wip.CompareAndSwap(0, 1) {
		if err := u.cleanup(u.resource); err != nil {
			DropError(err)
		}
	}
}
