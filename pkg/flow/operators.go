package flow

// Mechanical transformers over the core protocol. Each one relays signals
// 1:1 and inherits the upstream's serialization, so a plain done flag is
// enough to guard against signals racing an operator-initiated termination.

// Map returns a source emitting the results of applying mapper to each value
// of source. A mapper error cancels the upstream and is delivered downstream.
// Panics if source or mapper is nil.
func Map[T, R any](source Source[T], mapper func(T) (R, error)) Source[R] {
	if source == nil {
		panic("flow: Map: source is nil")
	}
	if mapper == nil {
		panic("flow: Map: mapper is nil")
	}
	return SourceFunc[R](func(sink Sink[R]) {
		source.Subscribe(&mapSink[T, R]{sink: sink, mapper: mapper})
	})
}

type mapSink[T, R any] struct {
	sink     Sink[R]
	mapper   func(T) (R, error)
	upstream Subscription
	done     bool
}

func (m *mapSink[T, R]) OnSubscribe(s Subscription) {
	m.upstream = s
	m.sink.OnSubscribe(s) // demand maps 1:1, the handle passes through
}

func (m *mapSink[T, R]) OnNext(value T) {
	if m.done {
		return
	}
	mapped, err := m.mapper(value)
	if err != nil {
		m.done = true
		m.upstream.Cancel()
		m.sink.OnError(err)
		return
	}
	m.sink.OnNext(mapped)
}

func (m *mapSink[T, R]) OnError(err error) {
	if m.done {
		DropError(err)
		return
	}
	m.done = true
	m.sink.OnError(err)
}

func (m *mapSink[T, R]) OnComplete() {
	if m.done {
		return
	}
	m.done = true
	m.sink.OnComplete()
}

// Filter returns a source emitting only the values of source for which
// predicate returns true. Each dropped value replenishes one unit of upstream
// demand so downstream demand counts delivered values only. Panics if source
// or predicate is nil.
func Filter[T any](source Source[T], predicate func(T) (bool, error)) Source[T] {
	if source == nil {
		panic("flow: Filter: source is nil")
	}
	if predicate == nil {
		panic("flow: Filter: predicate is nil")
	}
	return SourceFunc[T](func(sink Sink[T]) {
		source.Subscribe(&filterSink[T]{sink: sink, predicate: predicate})
	})
}

type filterSink[T any] struct {
	sink      Sink[T]
	predicate func(T) (bool, error)
	upstream  Subscription
	done      bool
}

func (f *filterSink[T]) OnSubscribe(s Subscription) {
	f.upstream = s
	f.sink.OnSubscribe(s)
}

func (f *filterSink[T]) OnNext(value T) {
	if f.done {
		return
	}
	keep, err := f.predicate(value)
	if err != nil {
		f.done = true
		f.upstream.Cancel()
		f.sink.OnError(err)
		return
	}
	if keep {
		f.sink.OnNext(value)
		return
	}
	f.upstream.Request(1)
}

func (f *filterSink[T]) OnError(err error) {
	if f.done {
		DropError(err)
		return
	}
	f.done = true
	f.sink.OnError(err)
}

func (f *filterSink[T]) OnComplete() {
	if f.done {
		return
	}
	f.done = true
	f.sink.OnComplete()
}

// Take returns a source emitting at most n values of source, then cancelling
// the upstream and completing. Take(source, 0) completes immediately without
// subscribing upstream. Panics if source is nil or n is negative.
func Take[T any](source Source[T], n int64) Source[T] {
	if source == nil {
		panic("flow: Take: source is nil")
	}
	if n < 0 {
		panic("flow: Take: n is negative")
	}
	if n == 0 {
		return SourceFunc[T](func(sink Sink[T]) {
			SignalComplete(sink)
		})
	}
	return SourceFunc[T](func(sink Sink[T]) {
		source.Subscribe(&takeSink[T]{sink: sink, remaining: n})
	})
}

type takeSink[T any] struct {
	sink      Sink[T]
	remaining int64
	upstream  Subscription
	done      bool
}

func (t *takeSink[T]) OnSubscribe(s Subscription) {
	t.upstream = s
	t.sink.OnSubscribe(s)
}

func (t *takeSink[T]) OnNext(value T) {
	if t.done {
		return
	}
	t.sink.OnNext(value)
	t.remaining--
	if t.remaining == 0 {
		t.done = true
		t.upstream.Cancel()
		t.sink.OnComplete()
	}
}

func (t *takeSink[T]) OnError(err error) {
	if t.done {
		DropError(err)
		return
	}
	t.done = true
	t.sink.OnError(err)
}

func (t *takeSink[T]) OnComplete() {
	if t.done {
		return
	}
	t.done = true
	t.sink.OnComplete()
}
