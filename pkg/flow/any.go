package flow

import "sync/atomic"

// Any returns a source that emits a single boolean reporting whether any
// value of source matches the predicate, then completes. Evaluation is
// short-circuiting and eager: the operator requests unbounded upstream demand
// at subscribe time, cancels the upstream on the first match, and emits true;
// if the upstream completes without a match it emits false. A predicate error
// cancels the upstream and is delivered downstream. Panics if source or
// predicate is nil.
func Any[T any](source Source[T], predicate func(T) (bool, error)) Source[bool] {
	if source == nil {
		panic("flow: Any: source is nil")
	}
	if predicate == nil {
		panic("flow: Any: predicate is nil")
	}
	return SourceFunc[bool](func(sink Sink[bool]) {
		source.Subscribe(&anySink[T]{
			scalar:    NewDeferredScalarSink(sink),
			predicate: predicate,
		})
	})
}

// anySink consumes the upstream eagerly and feeds the deferred scalar sink.
// done needs no atomicity: upstream signals are serialized, and it exists to
// reject signals that race a termination the operator itself initiated.
type anySink[T any] struct {
	scalar    *DeferredScalarSink[bool]
	predicate func(T) (bool, error)
	upstream  atomic.Pointer[Subscription]
	done      bool
}

func (a *anySink[T]) OnSubscribe(s Subscription) {
	if !SetOnce(&a.upstream, s) {
		return
	}
	// the downstream gets its handle before any demand flows upstream
	a.scalar.Downstream().OnSubscribe(a)
	s.Request(Unbounded)
}

func (a *anySink[T]) OnNext(value T) {
	if a.done {
		return
	}
	match, err := a.predicate(value)
	if err != nil {
		a.done = true
		Terminate(&a.upstream)
		a.scalar.Error(err)
		return
	}
	if match {
		a.done = true
		Terminate(&a.upstream)
		a.scalar.Complete(true)
	}
}

func (a *anySink[T]) OnError(err error) {
	if a.done {
		DropError(err)
		return
	}
	a.done = true
	a.scalar.Error(err)
}

func (a *anySink[T]) OnComplete() {
	if a.done {
		return
	}
	a.done = true
	a.scalar.Complete(false)
}

// Request and Cancel make anySink the handle the downstream talks to:
// demand goes to the scalar state machine, cancellation also tears down the
// upstream.

func (a *anySink[T]) Request(n int64) {
	a.scalar.Request(n)
}

func (a *anySink[T]) Cancel() {
	Terminate(&a.upstream)
	a.scalar.Cancel()
}
