// Package oteladapters provides OpenTelemetry implementations of the observability interfaces
// declared in recordstore, so that the storage engines and the lending engine can report to any
// OpenTelemetry backend without depending on it themselves.
//
//   - MetricsCollector maps durations to histograms, counters to counters and values to gauges
//   - TracingCollector wraps spans of an OpenTelemetry tracer
//   - SlogBridgeLogger logs through log/slog with trace correlation
package oteladapters
