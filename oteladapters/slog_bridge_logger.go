package oteladapters

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-lending-go/recordstore"
)

const (
	logAttrTraceID = "trace_id"
	logAttrSpanID  = "span_id"
)

// SlogBridgeLogger implements recordstore.Logger and recordstore.ContextualLogger on top of log/slog.
type SlogBridgeLogger struct {
	logger *slog.Logger
}

// NewSlogBridgeLogger creates a logger emitting through the OpenTelemetry slog bridge. Without
// otelslog.WithLoggerProvider it uses the global LoggerProvider. The bridge correlates records
// with the active span itself.
func NewSlogBridgeLogger(name string, options ...otelslog.Option) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: otelslog.NewLogger(name, options...)}
}

// NewSlogBridgeLoggerWithHandler creates a logger writing to handler. Records logged with a context
// holding a recording span get trace_id and span_id attributes.
func NewSlogBridgeLoggerWithHandler(handler slog.Handler) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: slog.New(&traceCorrelationHandler{next: handler})}
}

// Debug logs at debug level without context.
func (l *SlogBridgeLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs at info level without context.
func (l *SlogBridgeLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs at warn level without context.
func (l *SlogBridgeLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs at error level without context.
func (l *SlogBridgeLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// DebugContext logs at debug level.
func (l *SlogBridgeLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

// InfoContext logs at info level.
func (l *SlogBridgeLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

// WarnContext logs at warn level.
func (l *SlogBridgeLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

// ErrorContext logs at error level.
func (l *SlogBridgeLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

// traceCorrelationHandler adds the ids of the span in the record's context.
type traceCorrelationHandler struct {
	next slog.Handler
}

func (h *traceCorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *traceCorrelationHandler) Handle(ctx context.Context, record slog.Record) error {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		record = record.Clone()
		record.AddAttrs(
			slog.String(logAttrTraceID, spanCtx.TraceID().String()),
			slog.String(logAttrSpanID, spanCtx.SpanID().String()),
		)
	}

	return h.next.Handle(ctx, record)
}

func (h *traceCorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceCorrelationHandler{next: h.next.WithAttrs(attrs)}
}

func (h *traceCorrelationHandler) WithGroup(name string) slog.Handler {
	return &traceCorrelationHandler{next: h.next.WithGroup(name)}
}

var (
	_ recordstore.Logger           = (*SlogBridgeLogger)(nil)
	_ recordstore.ContextualLogger = (*SlogBridgeLogger)(nil)
)
