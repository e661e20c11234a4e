package flow_test

import (
	"errors"
	"testing"

	"github.com/vnykmshr/gopush/internal/testutil"
	gperrors "github.com/vnykmshr/gopush/pkg/common/errors"
	"github.com/vnykmshr/gopush/pkg/flow"
)

func TestNeverSignalsNothing(t *testing.T) {
	sink := testutil.NewSink[int](flow.Unbounded)

	flow.Never[int]().Subscribe(sink)

	sink.AssertSubscribed(t)
	sink.AssertNoValues(t)
	sink.AssertNotTerminated(t)
}

func TestNeverHandleIsInert(t *testing.T) {
	sink := testutil.NewSink[string](0)

	flow.Never[string]().Subscribe(sink)

	sink.Request(10)
	sink.Cancel()
	sink.Request(5)

	sink.AssertNoValues(t)
	sink.AssertNotTerminated(t)
}

func TestNeverIsSingleton(t *testing.T) {
	testutil.AssertEqual(t, flow.Never[int]() == flow.Never[int](), true)
	testutil.AssertEqual(t, flow.Never[string]() == flow.Never[string](), true)
}

func TestJustEmitsOnDemand(t *testing.T) {
	sink := testutil.NewSink[int](0)

	flow.Just(42).Subscribe(sink)

	sink.AssertSubscribed(t)
	sink.AssertNoValues(t)

	sink.Request(1)
	sink.AssertValues(t, []int{42})
	sink.AssertComplete(t)
}

func TestJustEmitsOnceUnderRepeatedDemand(t *testing.T) {
	sink := testutil.NewSink[int](1)

	flow.Just(7).Subscribe(sink)

	sink.Request(1)
	sink.Request(flow.Unbounded)

	sink.AssertValues(t, []int{7})
	sink.AssertComplete(t)
}

func TestJustCancelBeforeDemand(t *testing.T) {
	sink := testutil.NewSink[int](0)

	flow.Just(1).Subscribe(sink)
	sink.Cancel()
	sink.Request(1)

	sink.AssertNoValues(t)
	sink.AssertNotTerminated(t)
}

func TestJustBadRequest(t *testing.T) {
	sink := testutil.NewSink[int](0)

	flow.Just(1).Subscribe(sink)
	sink.Request(0)

	sink.AssertNoValues(t)
	sink.AssertError(t, gperrors.ErrNonPositiveRequest)
}

func TestFromSliceEmitsAllUnderUnboundedDemand(t *testing.T) {
	sink := testutil.NewSink[int](flow.Unbounded)

	flow.FromSlice([]int{1, 2, 3}).Subscribe(sink)

	sink.AssertValues(t, []int{1, 2, 3})
	sink.AssertComplete(t)
}

func TestFromSliceRespectsDemand(t *testing.T) {
	sink := testutil.NewSink[int](2)

	flow.FromSlice([]int{1, 2, 3, 4}).Subscribe(sink)

	sink.AssertValues(t, []int{1, 2})
	sink.AssertNotTerminated(t)

	sink.Request(1)
	sink.AssertValues(t, []int{1, 2, 3})
	sink.AssertNotTerminated(t)

	sink.Request(5)
	sink.AssertValues(t, []int{1, 2, 3, 4})
	sink.AssertComplete(t)
}

func TestFromSliceEmpty(t *testing.T) {
	sink := testutil.NewSink[int](0)

	flow.FromSlice[int](nil).Subscribe(sink)

	sink.AssertNoValues(t)
	sink.AssertComplete(t)
}

func TestFromSliceCancelStopsEmission(t *testing.T) {
	var received []int
	source := flow.FromSlice([]int{1, 2, 3, 4, 5})

	sink := &cancellingSink[int]{after: 2, received: &received}
	source.Subscribe(sink)

	testutil.AssertEqual(t, len(received), 2)
	testutil.AssertEqual(t, sink.completed, false)
}

func TestFromSliceBadRequest(t *testing.T) {
	sink := testutil.NewSink[int](0)

	flow.FromSlice([]int{1, 2}).Subscribe(sink)
	sink.Request(-1)

	sink.AssertError(t, gperrors.ErrNonPositiveRequest)
}

func TestSignalErrorPairsHandleWithError(t *testing.T) {
	boom := errors.New("boom")
	sink := testutil.NewSink[int](0)

	flow.SignalError[int](sink, boom)

	sink.AssertSubscribed(t)
	sink.AssertError(t, boom)
}

// cancellingSink cancels its subscription from inside OnNext after the given
// number of values.
type cancellingSink[T any] struct {
	after     int
	received  *[]T
	sub       flow.Subscription
	completed bool
}

func (c *cancellingSink[T]) OnSubscribe(s flow.Subscription) {
	c.sub = s
	s.Request(flow.Unbounded)
}

func (c *cancellingSink[T]) OnNext(value T) {
	*c.received = append(*c.received, value)
	if len(*c.received) == c.after {
		c.sub.Cancel()
	}
}

func (c *cancellingSink[T]) OnError(error) {}
func (c *cancellingSink[T]) OnComplete()   { c.completed = true }
