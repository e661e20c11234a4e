/*
Package parallel fans a multi-lane source out into independently subscribable
per-lane sources called rails.

A parallel.Source pushes values across N lanes at once. Group exposes those
lanes as N rails keyed by lane index, each a regular flow.Source that can be
handed to a different consumer, typically one per worker goroutine:

	lanes := parallel.FromSources(partA, partB, partC)

	parallel.Group(lanes).Subscribe(railConsumer) // receives rails keyed 0,1,2

Rails are delivered to the group's subscriber strictly before the upstream is
subscribed, so no value can arrive on a rail that has not reached its
consumer yet. Each rail enforces single subscription: a second Subscribe on
the same rail receives an immediate error signal and the first subscription is
unaffected. Demand requested on a rail before its upstream lane activates is
accumulated and forwarded as one request once the lane's handle arrives.

Cancelling a rail cancels only that rail's upstream lane. Cancelling a subset
of rails while the rest stay active is unsupported and leaves the upstream in
an undefined state; cancel all rails or none.
*/
package parallel
