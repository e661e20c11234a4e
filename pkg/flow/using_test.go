package flow_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/gopush/internal/testutil"
	gperrors "github.com/vnykmshr/gopush/pkg/common/errors"
	"github.com/vnykmshr/gopush/pkg/flow"
)

// trackedResource counts cleanup invocations so tests can assert the
// exactly-once release guarantee.
type trackedResource struct {
	cleanups   int
	cleanupErr error
}

func (r *trackedResource) cleanup() error {
	r.cleanups++
	return r.cleanupErr
}

func usingOver(resource *trackedResource, source flow.Source[int], eager bool) flow.Source[int] {
	return flow.Using(
		func() (*trackedResource, error) { return resource, nil },
		func(*trackedResource) (flow.Source[int], error) { return source, nil },
		func(r *trackedResource) error { return r.cleanup() },
		eager,
	)
}

func TestUsingEagerCleanupOnComplete(t *testing.T) {
	resource := &trackedResource{}
	sink := testutil.NewSink[int](flow.Unbounded)

	usingOver(resource, flow.FromSlice([]int{1, 2}), true).Subscribe(sink)

	sink.AssertValues(t, []int{1, 2})
	sink.AssertComplete(t)
	require.Equal(t, 1, resource.cleanups)
}

func TestUsingLazyCleanupOnComplete(t *testing.T) {
	resource := &trackedResource{}
	sink := testutil.NewSink[int](flow.Unbounded)

	usingOver(resource, flow.FromSlice([]int{1}), false).Subscribe(sink)

	sink.AssertComplete(t)
	require.Equal(t, 1, resource.cleanups)
}

func TestUsingCleanupOnCancel(t *testing.T) {
	resource := &trackedResource{}
	sink := testutil.NewSink[int](0)

	usingOver(resource, flow.Never[int](), true).Subscribe(sink)

	sink.AssertNotTerminated(t)
	require.Equal(t, 0, resource.cleanups)

	sink.Cancel()
	require.Equal(t, 1, resource.cleanups)

	// cancellation is idempotent; the resource is not released twice
	sink.Cancel()
	require.Equal(t, 1, resource.cleanups)
}

func TestUsingEagerCleanupOnError(t *testing.T) {
	boom := errors.New("boom")
	resource := &trackedResource{}
	sink := testutil.NewSink[int](flow.Unbounded)

	failing := flow.SourceFunc[int](func(s flow.Sink[int]) {
		flow.SignalError(s, boom)
	})

	usingOver(resource, failing, true).Subscribe(sink)

	sink.AssertError(t, boom)
	require.Equal(t, 1, resource.cleanups)
}

func TestUsingEagerCleanupFailureAttachedToError(t *testing.T) {
	boom := errors.New("boom")
	cleanupErr := errors.New("release failed")
	resource := &trackedResource{cleanupErr: cleanupErr}
	sink := testutil.NewSink[int](flow.Unbounded)

	failing := flow.SourceFunc[int](func(s flow.Sink[int]) {
		flow.SignalError(s, boom)
	})

	usingOver(resource, failing, true).Subscribe(sink)

	err := sink.Err()
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, cleanupErr)
}

func TestUsingEagerCleanupFailureReplacesCompletion(t *testing.T) {
	cleanupErr := errors.New("release failed")
	resource := &trackedResource{cleanupErr: cleanupErr}
	sink := testutil.NewSink[int](flow.Unbounded)

	usingOver(resource, flow.FromSlice([]int{1}), true).Subscribe(sink)

	sink.AssertValues(t, []int{1})
	sink.AssertError(t, cleanupErr)
}

func TestUsingLazyCleanupFailureIsDropped(t *testing.T) {
	var dropped []error
	flow.OnDroppedError(func(err error) { dropped = append(dropped, err) })
	defer flow.OnDroppedError(nil)

	cleanupErr := errors.New("release failed")
	resource := &trackedResource{cleanupErr: cleanupErr}
	sink := testutil.NewSink[int](flow.Unbounded)

	usingOver(resource, flow.FromSlice([]int{1}), false).Subscribe(sink)

	// the terminal signal went out before cleanup ran, so the failure has no
	// delivery target
	sink.AssertComplete(t)
	require.Len(t, dropped, 1)
	require.ErrorIs(t, dropped[0], cleanupErr)
}

func TestUsingSupplierFailureSkipsCleanup(t *testing.T) {
	boom := errors.New("no resource")
	cleanups := 0
	sink := testutil.NewSink[int](0)

	flow.Using(
		func() (int, error) { return 0, boom },
		func(int) (flow.Source[int], error) { return flow.Never[int](), nil },
		func(int) error { cleanups++; return nil },
		true,
	).Subscribe(sink)

	sink.AssertError(t, boom)
	require.Equal(t, 0, cleanups)
}

func TestUsingFactoryFailureReleasesResource(t *testing.T) {
	boom := errors.New("factory failed")
	resource := &trackedResource{}
	sink := testutil.NewSink[int](0)

	flow.Using(
		func() (*trackedResource, error) { return resource, nil },
		func(*trackedResource) (flow.Source[int], error) { return nil, boom },
		func(r *trackedResource) error { return r.cleanup() },
		true,
	).Subscribe(sink)

	sink.AssertError(t, boom)
	require.Equal(t, 1, resource.cleanups)
}

func TestUsingFactoryFailureWithCleanupFailure(t *testing.T) {
	boom := errors.New("factory failed")
	cleanupErr := errors.New("release failed")
	resource := &trackedResource{cleanupErr: cleanupErr}
	sink := testutil.NewSink[int](0)

	flow.Using(
		func() (*trackedResource, error) { return resource, nil },
		func(*trackedResource) (flow.Source[int], error) { return nil, boom },
		func(r *trackedResource) error { return r.cleanup() },
		true,
	).Subscribe(sink)

	err := sink.Err()
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, cleanupErr)
	require.Equal(t, 1, resource.cleanups)
}

func TestUsingNilSourceFromFactory(t *testing.T) {
	resource := &trackedResource{}
	sink := testutil.NewSink[int](0)

	flow.Using(
		func() (*trackedResource, error) { return resource, nil },
		func(*trackedResource) (flow.Source[int], error) { return nil, nil },
		func(r *trackedResource) error { return r.cleanup() },
		true,
	).Subscribe(sink)

	sink.AssertError(t, gperrors.ErrNilSource)
	require.Equal(t, 1, resource.cleanups)
}

func TestUsingNilCollaboratorPanics(t *testing.T) {
	require.Panics(t, func() {
		flow.Using[int, int](nil, nil, nil, true)
	})
	require.Panics(t, func() {
		flow.Using(
			func() (int, error) { return 0, nil },
			func(int) (flow.Source[int], error) { return flow.Never[int](), nil },
			nil,
			true,
		)
	})
}
