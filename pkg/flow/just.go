package flow

import "sync/atomic"

// Just returns a source that emits a single value on first demand, then
// completes.
func Just[T any](value T) Source[T] {
	return justSource[T]{value: value}
}

type justSource[T any] struct{ value T }

func (j justSource[T]) Subscribe(sink Sink[T]) {
	sink.OnSubscribe(&scalarSubscription[T]{sink: sink, value: j.value})
}

// scalarSubscription emits one preset value the first time demand arrives.
type scalarSubscription[T any] struct {
	sink  Sink[T]
	value T
	once  atomic.Int32
}

func (s *scalarSubscription[T]) Request(n int64) {
	if n <= 0 {
		if s.once.CompareAndSwap(0, 1) {
			s.sink.OnError(BadRequest(n))
		} else {
			DropError(BadRequest(n))
		}
		return
	}
	if s.once.CompareAndSwap(0, 1) {
		s.sink.OnNext(s.value)
		s.sink.OnComplete()
	}
}

func (s *scalarSubscription[T]) Cancel() {
	s.once.Store(1)
}
