package sqlengine

import (
	"errors"
	"regexp"

	"github.com/AntonStoeckl/library-lending-go/recordstore"
)

var (
	ErrEmptyTableName     = errors.New("empty table name supplied")
	ErrInvalidTableName   = errors.New("table name must be a plain SQL identifier")
	ErrUnsupportedDialect = errors.New("unsupported sql dialect")

	tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Option defines a functional option for configuring Engine.
type Option func(*Engine) error

// WithTableName sets the table name for the Engine.
func WithTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		if !tableNamePattern.MatchString(tableName) {
			return ErrInvalidTableName
		}

		e.tableName = tableName

		return nil
	}
}

// WithDialect sets the SQL dialect, DialectPostgres (default) or DialectSQLite.
func WithDialect(dialect string) Option {
	return func(e *Engine) error {
		switch dialect {
		case DialectPostgres, DialectSQLite:
			e.dialect = dialect
			return nil
		default:
			return ErrUnsupportedDialect
		}
	}
}

// WithLogger sets the logger for the Engine.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: documents loaded and saved with sizes and durations (production-safe)
// Error level: failures that cause operation failures.
//
// It is ignored when a contextual logger is set, see WithContextualLogger.
func WithLogger(logger recordstore.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine.
// It receives load/save durations and database error counts.
func WithMetrics(collector recordstore.MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Engine.
// A span is created for every load and save.
func WithTracing(collector recordstore.TracingCollector) Option {
	return func(e *Engine) error {
		e.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Engine.
// It takes the place of the Logger and receives the operation context for trace correlation.
func WithContextualLogger(logger recordstore.ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}
