package flow

// Never returns the source that signals nothing: subscribers receive their
// handle and then no value, error, or completion, ever. Request and Cancel on
// the handle are safe no-ops. Never sources carry no state; every call for a
// given element type returns the identical value.
func Never[T any]() Source[T] {
	return neverSource[T]{}
}

type neverSource[T any] struct{}

func (neverSource[T]) Subscribe(sink Sink[T]) {
	sink.OnSubscribe(emptySub)
}
