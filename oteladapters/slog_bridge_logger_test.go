package oteladapters_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AntonStoeckl/library-lending-go/oteladapters"
	"github.com/AntonStoeckl/library-lending-go/testutil/testdoubles"
)

func Test_SlogBridgeLoggerWithHandler_CorrelatesTraces(t *testing.T) {
	provider := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	handler := testdoubles.NewLogHandlerSpy(false)
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)

	ctx, span := provider.Tracer("test").Start(context.Background(), "library_lending.borrow")
	logger.InfoContext(ctx, "with span", "isbn", "ISBN-001")
	span.End()

	logger.InfoContext(context.Background(), "without span")

	assert.True(t, handler.HasLogWithAttr("with span", "trace_id", span.SpanContext().TraceID().String()))
	assert.True(t, handler.HasLogWithAttr("with span", "span_id", span.SpanContext().SpanID().String()))
	assert.True(t, handler.HasLogWithAttr("with span", "isbn", "ISBN-001"))
	assert.True(t, handler.HasLog(slog.LevelInfo, "without span"))
	assert.False(t, handler.HasLogWithAttr("without span", "trace_id", span.SpanContext().TraceID().String()))
}

func Test_SlogBridgeLogger_AllLevels(t *testing.T) {
	handler := testdoubles.NewLogHandlerSpy(false)
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)
	ctx := context.Background()

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")
	logger.DebugContext(ctx, "debug ctx")
	logger.InfoContext(ctx, "info ctx")
	logger.WarnContext(ctx, "warn ctx")
	logger.ErrorContext(ctx, "error ctx")

	assert.Equal(t, 8, handler.GetRecordCount())
	assert.True(t, handler.HasLog(slog.LevelWarn, "warn ctx"))
	assert.True(t, handler.HasLog(slog.LevelError, "error"))
}

func Test_NewSlogBridgeLogger_UsesGlobalProvider(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("library")

	// the global provider is a no-op unless configured, logging must not fail
	logger.InfoContext(context.Background(), "info message", "key", "value")
	logger.Error("error message")
}

func Test_NewSlogBridgeLogger_EmitsToLoggerProvider(t *testing.T) {
	tracerProvider := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tracerProvider.Shutdown(context.Background()) })

	handler := testdoubles.NewLogHandlerSpy(false)
	exporter, err := oteladapters.NewSlogExporter(handler)
	require.NoError(t, err)

	loggerProvider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	t.Cleanup(func() { _ = loggerProvider.Shutdown(context.Background()) })

	logger := oteladapters.NewSlogBridgeLogger("library", otelslog.WithLoggerProvider(loggerProvider))

	ctx, span := tracerProvider.Tracer("test").Start(context.Background(), "library_lending.borrow")
	logger.WarnContext(ctx, "book already lent", "isbn", "ISBN-001", "copies", 1, "overdue", true)
	span.End()

	logger.Error("without span")

	assert.True(t, handler.HasLog(slog.LevelWarn, "book already lent"))
	assert.True(t, handler.HasLogWithAttr("book already lent", "isbn", "ISBN-001"))
	assert.True(t, handler.HasLogWithAttr("book already lent", "trace_id", span.SpanContext().TraceID().String()))
	assert.True(t, handler.HasLogWithAttr("book already lent", "span_id", span.SpanContext().SpanID().String()))
	assert.True(t, handler.HasLog(slog.LevelError, "without span"))
	assert.Equal(t, 2, handler.GetRecordCount())
}

func Test_SlogExporter_SkipsLevelsTheHandlerIgnores(t *testing.T) {
	spy := testdoubles.NewLogHandlerSpy(false)

	exporter, err := oteladapters.NewSlogExporter(levelFilter{Handler: spy, min: slog.LevelWarn})
	require.NoError(t, err)

	loggerProvider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	t.Cleanup(func() { _ = loggerProvider.Shutdown(context.Background()) })

	logger := oteladapters.NewSlogBridgeLogger("library", otelslog.WithLoggerProvider(loggerProvider))
	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")

	assert.Equal(t, 1, spy.GetRecordCount())
	assert.True(t, spy.HasLog(slog.LevelWarn, "warn"))
}

func Test_NewSlogExporter_RejectsNilHandler(t *testing.T) {
	_, err := oteladapters.NewSlogExporter(nil)

	assert.ErrorIs(t, err, oteladapters.ErrNilHandler)
}

// levelFilter passes records from min upwards to Handler.
type levelFilter struct {
	slog.Handler
	min slog.Level
}

func (f levelFilter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= f.min
}
