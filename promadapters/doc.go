// Package promadapters provides a Prometheus implementation of recordstore.MetricsCollector.
//
// Metrics are registered on a dedicated registry the first time they are recorded. The label names
// of a metric are fixed by its first recording.
package promadapters
