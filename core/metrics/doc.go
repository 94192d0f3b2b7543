// Package metrics defines the sink contracts through which dispatch results
// leave the engine. Each processed block produces an IntervalEvent; sinks
// may also implement OutageRecorder and SummaryRecorder. Implementations
// (prometheus, influx, mqtt) live in infra/metrics and register themselves
// with RegisterMetricsSink so they can be selected from configuration.
package metrics
