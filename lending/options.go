package lending

import (
	"errors"
	"time"
)

var ErrNilClock = errors.New("clock must not be nil")

// Option defines a functional option for configuring Engine.
type Option func(*Engine) error

// WithLogger sets the logger for the Engine. It is ignored for operations when a contextual logger is set.
func WithLogger(logger Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, e.g. one correlating log records with trace spans.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine.
func WithMetrics(collector MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Engine.
func WithTracing(collector TracingCollector) Option {
	return func(e *Engine) error {
		e.tracingCollector = collector
		return nil
	}
}

// WithReconcileOnOpen makes Open recompute every book's on-loan flag from the borrowed sets
// of the directory and persist the catalog if anything changed.
//
// Without it Open only reports inconsistencies, see Engine.Audit.
func WithReconcileOnOpen() Option {
	return func(e *Engine) error {
		e.reconcileOnOpen = true
		return nil
	}
}

// WithClock replaces time.Now as the source of event timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) error {
		if clock == nil {
			return ErrNilClock
		}

		e.clock = clock

		return nil
	}
}
