// Package metrics provides Prometheus instrumentation for gopush components.
//
// This package enables monitoring and observability for gopush's push-based
// streaming protocol through Prometheus metrics.
//
// # Overview
//
// The metrics package provides automatic instrumentation for:
//   - Protocol signals (subscriptions, values, errors, completions)
//   - Demand and cancellation (requested amounts, cancellations)
//   - Dropped errors and protocol violations
//   - Fan-out rail groups (rail subscriptions, active rails)
//   - Redis queue sources (pops, pop latency, consumers)
//
// # Quick Start
//
// Enable metrics by wrapping a source:
//
//	source := flow.WithMetrics(flow.FromSlice(values), "ingest", metrics.DefaultConfig())
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := metrics.NewRegistry(prometheus.NewRegistry())
//	config := metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//	}
//
//	source := flow.WithMetrics(upstream, "ingest", config)
//
// # Available Metrics
//
// ## Protocol Metrics
//
//   - gopush_flow_subscriptions_total: Total number of subscriptions started
//   - gopush_flow_next_signals_total: Total number of values delivered downstream
//   - gopush_flow_error_signals_total: Total number of error signals delivered
//   - gopush_flow_complete_signals_total: Total number of completion signals delivered
//   - gopush_flow_cancellations_total: Total number of downstream cancellations
//   - gopush_flow_demand_requested_total: Total demand requested downstream
//   - gopush_flow_dropped_errors_total: Errors diverted to the dropped-error hook
//   - gopush_flow_protocol_violations_total: Bad requests and resubscriptions
//
// ## Fan-Out Metrics
//
//   - gopush_parallel_rail_subscriptions_total: Total number of rail subscriptions
//   - gopush_parallel_active_rails: Number of rails currently subscribed
//
// ## Queue Source Metrics
//
//   - gopush_redisq_items_popped_total: Items popped from queue sources
//   - gopush_redisq_pop_duration_seconds: Time spent waiting for queue pops
//   - gopush_redisq_active_consumers: Consumers registered on queue sources
//
// # Labels
//
//   - source_name: User-provided name for the instrumented source
//   - group_name: User-provided name for the fan-out group
//   - queue_key: Redis key of the queue source
//
// # Performance
//
// Metrics collection is designed for minimal overhead:
//   - Metrics are updated only when signals occur
//   - No background goroutines or timers
//   - Conditional metrics updates based on enabled state
package metrics
