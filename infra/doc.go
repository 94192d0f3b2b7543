// Package infra holds the adapters around the engine: the MQTT publisher
// and command listener, the metrics sinks, Sentry reporting and the zerolog
// logger. They depend on the interfaces defined in core, never the reverse.
package infra
