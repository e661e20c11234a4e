package flow

import "sync/atomic"

// FromSlice returns a source that emits the elements of items in order under
// downstream demand, then completes. The slice is not copied; callers must
// not mutate it while subscriptions are live. An empty slice completes
// immediately.
func FromSlice[T any](items []T) Source[T] {
	return SourceFunc[T](func(sink Sink[T]) {
		if len(items) == 0 {
			SignalComplete(sink)
			return
		}
		sink.OnSubscribe(&sliceSubscription[T]{sink: sink, items: items})
	})
}

// sliceSubscription drives demand-bounded emission over a fixed slice. The
// drain loop runs on whichever goroutine moves the demand counter off zero,
// so emission stays single-writer without a lock; the counter handoff in
// drain passes that role to a later Request when demand runs dry.
type sliceSubscription[T any] struct {
	sink      Sink[T]
	items     []T
	index     int64 // next element to emit; touched only by the draining goroutine
	requested atomic.Int64
	done      atomic.Bool
}

func (s *sliceSubscription[T]) Request(n int64) {
	if n <= 0 {
		if s.done.CompareAndSwap(false, true) {
			s.sink.OnError(BadRequest(n))
		} else {
			DropError(BadRequest(n))
		}
		return
	}
	if AddDemand(&s.requested, n) == 0 {
		s.drain()
	}
}

func (s *sliceSubscription[T]) Cancel() {
	s.done.Store(true)
}

func (s *sliceSubscription[T]) drain() {
	var emitted int64
	for {
		r := s.requested.Load()
		for emitted < r {
			if s.done.Load() {
				return
			}
			i := s.index
			if i == int64(len(s.items)) {
				break
			}
			s.sink.OnNext(s.items[i])
			s.index = i + 1
			emitted++
		}
		if s.index == int64(len(s.items)) {
			if s.done.CompareAndSwap(false, true) {
				s.sink.OnComplete()
			}
			return
		}
		if ConsumeDemand(&s.requested, emitted) == 0 {
			return
		}
		emitted = 0
	}
}
