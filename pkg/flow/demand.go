package flow

import (
	"fmt"
	"sync/atomic"

	gperrors "github.com/vnykmshr/gopush/pkg/common/errors"
)

// AddDemand atomically adds n to a demand counter, saturating at Unbounded,
// and returns the value held before the addition. A zero return tells the
// caller it is the one that moved the counter off idle. The CAS loop may
// retry under contention but always makes progress.
func AddDemand(requested *atomic.Int64, n int64) int64 {
	for {
		current := requested.Load()
		if current == Unbounded {
			return Unbounded
		}
		next := current + n
		if next < 0 || n == Unbounded {
			next = Unbounded
		}
		if requested.CompareAndSwap(current, next) {
			return current
		}
	}
}

// ConsumeDemand atomically subtracts n emitted values from a demand counter
// and returns the remaining demand. Unbounded demand is never decremented.
func ConsumeDemand(requested *atomic.Int64, n int64) int64 {
	for {
		current := requested.Load()
		if current == Unbounded {
			return Unbounded
		}
		next := current - n
		if next < 0 {
			next = 0
		}
		if requested.CompareAndSwap(current, next) {
			return next
		}
	}
}

// BadRequest builds the protocol-violation error for a non-positive request
// amount.
func BadRequest(n int64) error {
	return fmt.Errorf("%w: got %d", gperrors.ErrNonPositiveRequest, n)
}
