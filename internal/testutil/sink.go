package testutil

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/vnykmshr/gopush/pkg/flow"
)

// Sink records every signal it receives for later assertions. It implements
// flow.Sink and is safe for concurrent signaling, though a well-behaved
// upstream serializes signals anyway.
type Sink[T any] struct {
	initial int64

	mu            sync.Mutex
	subscription  flow.Subscription
	subscribeCnt  int
	values        []T
	err           error
	errorCnt      int
	completeCnt   int
	terminated    chan struct{}
	terminateOnce sync.Once
}

// NewSink creates a recording sink that requests initialDemand as soon as it
// is subscribed. Use 0 to exercise deferred-demand paths and request manually.
func NewSink[T any](initialDemand int64) *Sink[T] {
	return &Sink[T]{
		initial:    initialDemand,
		terminated: make(chan struct{}),
	}
}

// OnSubscribe records the subscription and issues the initial request, if any.
func (s *Sink[T]) OnSubscribe(sub flow.Subscription) {
	s.mu.Lock()
	s.subscription = sub
	s.subscribeCnt++
	s.mu.Unlock()
	if s.initial != 0 {
		sub.Request(s.initial)
	}
}

// OnNext records the value.
func (s *Sink[T]) OnNext(value T) {
	s.mu.Lock()
	s.values = append(s.values, value)
	s.mu.Unlock()
}

// OnError records the error and marks the sink terminated.
func (s *Sink[T]) OnError(err error) {
	s.mu.Lock()
	s.err = err
	s.errorCnt++
	s.mu.Unlock()
	s.terminateOnce.Do(func() { close(s.terminated) })
}

// OnComplete marks the sink terminated.
func (s *Sink[T]) OnComplete() {
	s.mu.Lock()
	s.completeCnt++
	s.mu.Unlock()
	s.terminateOnce.Do(func() { close(s.terminated) })
}

// Request forwards a demand request to the recorded subscription.
func (s *Sink[T]) Request(n int64) {
	s.mu.Lock()
	sub := s.subscription
	s.mu.Unlock()
	if sub == nil {
		panic("testutil: Request before OnSubscribe")
	}
	sub.Request(n)
}

// Cancel cancels the recorded subscription.
func (s *Sink[T]) Cancel() {
	s.mu.Lock()
	sub := s.subscription
	s.mu.Unlock()
	if sub == nil {
		panic("testutil: Cancel before OnSubscribe")
	}
	sub.Cancel()
}

// Values returns a copy of the values received so far.
func (s *Sink[T]) Values() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.values...)
}

// Err returns the most recent error signal, or nil.
func (s *Sink[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Await blocks until the sink receives a terminal signal or the test timeout
// elapses.
func (s *Sink[T]) Await(t *testing.T) {
	t.Helper()
	select {
	case <-s.terminated:
	case <-time.After(TestTimeout):
		t.Fatal("timed out waiting for terminal signal")
	}
}

// AssertSubscribed fails unless OnSubscribe was called exactly once.
func (s *Sink[T]) AssertSubscribed(t *testing.T) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribeCnt != 1 {
		t.Fatalf("OnSubscribe called %d times, want 1", s.subscribeCnt)
	}
}

// AssertValues fails unless the received values equal want in order.
func (s *Sink[T]) AssertValues(t *testing.T, want []T) {
	t.Helper()
	got := s.Values()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("values = %v, want %v", got, want)
	}
}

// AssertNoValues fails if any value was received.
func (s *Sink[T]) AssertNoValues(t *testing.T) {
	t.Helper()
	if got := s.Values(); len(got) != 0 {
		t.Fatalf("expected no values, got %v", got)
	}
}

// AssertValueCount fails unless exactly want values were received.
func (s *Sink[T]) AssertValueCount(t *testing.T, want int) {
	t.Helper()
	if got := len(s.Values()); got != want {
		t.Fatalf("received %d values, want %d", got, want)
	}
}

// AssertNoError fails if an error signal was received.
func (s *Sink[T]) AssertNoError(t *testing.T) {
	t.Helper()
	if err := s.Err(); err != nil {
		t.Fatalf("unexpected error signal: %v", err)
	}
}

// AssertError fails unless exactly one error signal matching target was
// received.
func (s *Sink[T]) AssertError(t *testing.T, target error) {
	t.Helper()
	s.mu.Lock()
	err, count := s.err, s.errorCnt
	s.mu.Unlock()
	if count != 1 {
		t.Fatalf("OnError called %d times, want 1", count)
	}
	if !errors.Is(err, target) {
		t.Fatalf("error signal = %v, want match for %v", err, target)
	}
}

// AssertComplete fails unless exactly one completion signal and no error was
// received.
func (s *Sink[T]) AssertComplete(t *testing.T) {
	t.Helper()
	s.mu.Lock()
	err, completes := s.err, s.completeCnt
	s.mu.Unlock()
	if err != nil {
		t.Fatalf("unexpected error signal: %v", err)
	}
	if completes != 1 {
		t.Fatalf("OnComplete called %d times, want 1", completes)
	}
}

// AssertNotTerminated fails if any terminal signal was received.
func (s *Sink[T]) AssertNotTerminated(t *testing.T) {
	t.Helper()
	s.mu.Lock()
	err, completes := s.err, s.completeCnt
	s.mu.Unlock()
	if err != nil {
		t.Fatalf("unexpected error signal: %v", err)
	}
	if completes != 0 {
		t.Fatalf("unexpected completion signal (OnComplete called %d times)", completes)
	}
}
