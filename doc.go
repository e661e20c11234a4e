/*
Package gopush provides a Go library for backpressure-aware, push-based
asynchronous streaming.

Core Protocol (pkg/flow):
  - Source/Sink/Subscription: demand-driven push streams
  - Never, Just, FromSlice, FromChannel: ready-made sources
  - Map, Filter, Take, Any: composable operators
  - Using: resource-scoped streams with exactly-once cleanup
  - ToChannel: bridge streams back into channel land

Fan-Out (pkg/flow/parallel):
  - Group: expose multi-lane sources as independently consumable rails

Infrastructure Sources:
  - redisq: demand-driven consumption of Redis lists
  - schedule: cron-expression tick streams

Observability (pkg/metrics):
  - Prometheus instrumentation for signals, demand, and cancellations

Example usage:

	import "github.com/vnykmshr/gopush/pkg/flow"

	evens := flow.Filter(flow.FromSlice(numbers), func(n int) (bool, error) {
		return n%2 == 0, nil
	})
	values, errs := flow.ToChannel(ctx, evens, 16)

	for v := range values {
		process(v)
	}
*/
package gopush
