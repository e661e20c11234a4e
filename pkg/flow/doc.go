/*
Package flow implements a push-based streaming protocol with explicit
backpressure and cooperative cancellation.

A Source pushes values to a Sink, but only as many as the sink has authorized
through its Subscription handle. The contract, for every subscription:

  - exactly one OnSubscribe call, before any other signal
  - zero or more OnNext calls, never exceeding the requested demand
  - at most one terminal signal, OnError or OnComplete, after which nothing
    else is delivered
  - signals are never delivered concurrently with each other
  - Request and Cancel may be called from any goroutine at any time, never
    block, and are linearized through atomics rather than locks

Basic Usage:

	sums := flow.Map(flow.FromSlice([]int{1, 2, 3}), func(x int) (int, error) {
		return x * x, nil
	})

	values, errs := flow.ToChannel(ctx, sums, 16)
	for v := range values {
		fmt.Println(v)
	}
	if err := <-errs; err != nil {
		log.Fatal(err)
	}

Demand:

Demand is a count of values a sink is willing to receive, requested through
its Subscription. flow.Unbounded switches a subscription to effectively
infinite demand; demand arithmetic saturates there instead of overflowing.
Requesting a non-positive amount is a protocol violation and comes back as an
error signal, never a silent no-op.

Resource Scoping:

Using ties a resource to a subscription's lifetime and releases it exactly
once whether the stream completes, fails, or is cancelled:

	source := flow.Using(
		func() (*os.File, error) { return os.Open(path) },
		func(f *os.File) (flow.Source[string], error) { return linesOf(f), nil },
		func(f *os.File) error { return f.Close() },
		true, // eager: close before the terminal signal reaches the sink
	)

Undeliverable Errors:

An error with no legal delivery target, such as a failure after the terminal
signal already went out, is diverted to a process-wide hook instead of being
lost or re-raised. Replace the default logging handler with OnDroppedError.

Custom Sources and Operators:

SourceFunc adapts a function to the Source interface. The package exports the
building blocks its own operators are made of: AddDemand and ConsumeDemand
for saturating demand counters, SetOnce and Terminate for race-free upstream
handles, DeferredScalarSink for single-result operators, and SignalError for
the handle-less error path.

Scheduling:

The package imposes no threading model. Sources may emit on the subscribing
goroutine or from any other goroutine, and every primitive here is correct
under both; placement of work on goroutines belongs to the caller.
*/
package flow
