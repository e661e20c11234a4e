package testutil

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/gopush/pkg/flow"
)

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(t)
	defer cancel()

	if ctx == nil {
		t.Fatal("context should not be nil")
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("context should have a deadline")
	}

	if time.Until(deadline) > TestTimeout {
		t.Errorf("deadline is too far in the future")
	}
}

func TestAssertNoError(t *testing.T) {
	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	AssertError(t, context.Canceled)
}

func TestAssertEqual(t *testing.T) {
	AssertEqual(t, 42, 42)
	AssertEqual(t, "hello", "hello")
	AssertEqual(t, true, true)
}

func TestAssertNotEqual(t *testing.T) {
	AssertNotEqual(t, 1, 2)
	AssertNotEqual(t, "a", "b")
	AssertNotEqual(t, true, false)
}

func TestEventually(t *testing.T) {
	t.Run("condition met immediately", func(t *testing.T) {
		called := false
		Eventually(t, func() bool {
			called = true
			return true
		}, 100*time.Millisecond, 10*time.Millisecond)

		if !called {
			t.Error("condition function should be called")
		}
	})

	t.Run("condition met after delay", func(t *testing.T) {
		var counter int32
		go func() {
			time.Sleep(50 * time.Millisecond)
			atomic.StoreInt32(&counter, 1)
		}()

		Eventually(t, func() bool {
			return atomic.LoadInt32(&counter) == 1
		}, 200*time.Millisecond, 10*time.Millisecond)
	})
}

type recordingSubscription struct {
	requested atomic.Int64
	cancelled atomic.Bool
}

func (r *recordingSubscription) Request(n int64) { r.requested.Add(n) }
func (r *recordingSubscription) Cancel()         { r.cancelled.Store(true) }

func TestSinkRecordsSignals(t *testing.T) {
	sink := NewSink[int](0)
	sub := &recordingSubscription{}

	sink.OnSubscribe(sub)
	sink.AssertSubscribed(t)
	AssertEqual(t, sub.requested.Load(), 0)

	sink.Request(3)
	AssertEqual(t, sub.requested.Load(), 3)

	sink.OnNext(1)
	sink.OnNext(2)
	sink.AssertValues(t, []int{1, 2})
	sink.AssertValueCount(t, 2)
	sink.AssertNotTerminated(t)

	sink.OnComplete()
	sink.AssertComplete(t)
	sink.Await(t)
}

func TestSinkInitialDemand(t *testing.T) {
	sink := NewSink[string](flow.Unbounded)
	sub := &recordingSubscription{}

	sink.OnSubscribe(sub)
	AssertEqual(t, sub.requested.Load(), flow.Unbounded)
}

func TestSinkRecordsError(t *testing.T) {
	boom := errors.New("boom")
	sink := NewSink[int](0)

	sink.OnSubscribe(&recordingSubscription{})
	sink.OnError(boom)

	sink.AssertError(t, boom)
	sink.Await(t)
}

func TestSinkCancel(t *testing.T) {
	sink := NewSink[int](0)
	sub := &recordingSubscription{}

	sink.OnSubscribe(sub)
	sink.Cancel()

	if !sub.cancelled.Load() {
		t.Error("cancel should propagate to the subscription")
	}
}
