package parallel

import (
	"fmt"

	"github.com/vnykmshr/gopush/pkg/flow"
)

// Source produces values across a fixed number of independent lanes. Lanes
// share the upstream but own disjoint state; the protocol contract of
// package flow holds per lane.
type Source[T any] interface {
	// Parallelism returns the number of lanes. Fixed for the source's lifetime.
	Parallelism() int

	// Subscribe starts the lanes pushing into sinks, one sink per lane.
	// len(sinks) must equal Parallelism(); a mismatch is reported to every
	// sink as an error signal.
	Subscribe(sinks []flow.Sink[T])
}

// FromSources builds a multi-lane source with one independent flow.Source per
// lane. Lane i is backed by sources[i].
func FromSources[T any](sources ...flow.Source[T]) Source[T] {
	return laneSources[T](sources)
}

type laneSources[T any] []flow.Source[T]

func (l laneSources[T]) Parallelism() int { return len(l) }

func (l laneSources[T]) Subscribe(sinks []flow.Sink[T]) {
	if !Validate(l.Parallelism(), sinks) {
		return
	}
	for i, source := range l {
		source.Subscribe(sinks[i])
	}
}

// Validate checks that sinks matches the expected lane count, reporting a
// mismatch to every sink as an error signal. Multi-lane sources call this at
// the top of Subscribe.
func Validate[T any](parallelism int, sinks []flow.Sink[T]) bool {
	if len(sinks) == parallelism {
		return true
	}
	err := fmt.Errorf("parallel: expected %d sinks, got %d", parallelism, len(sinks))
	for _, sink := range sinks {
		flow.SignalError(sink, err)
	}
	return false
}
