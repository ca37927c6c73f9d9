package sqlengine

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-lending-go/recordstore"
)

const (
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildUpsertQueryFailed = "failed to build upsert query"
	logMsgBuildDocumentFailed    = "failed to build storable document from database row"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database execution failed during document save"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgCreateSchemaFailed     = "failed to create documents table"
	logMsgDocumentLoaded         = "document loaded"
	logMsgDocumentSaved          = "document saved"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "document store operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrCollection            = "collection"
	logAttrBytes                 = "bytes"
	logAttrDurationMS            = "duration_ms"

	operationLoad   = "load"
	operationSave   = "save"
	operationSchema = "schema"

	spanNameLoad       = "library_storage.load"
	spanNameSave       = "library_storage.save"
	spanAttrOperation  = "operation"
	spanAttrTable      = "db.table"
	spanAttrDialect    = "db.system"
	spanAttrCollection = "collection"
	spanAttrErrorType  = "error_type"

	metricLoadDuration = "library_storage_load_duration_seconds"
	metricSaveDuration = "library_storage_save_duration_seconds"
	metricErrors       = "library_storage_errors_total"

	statusSuccess  = "success"
	statusNotFound = "not_found"
	statusError    = "error"
)

// finishOperation records metrics and finishes the span of a load or save.
func (e *Engine) finishOperation(ctx context.Context, span recordstore.SpanContext, operation string, duration time.Duration, err error) {
	status := statusSuccess

	switch {
	case err == nil:
	case errors.Is(err, recordstore.ErrDocumentNotFound):
		status = statusNotFound
	default:
		status = statusError
		e.recordErrorMetrics(ctx, operation)
	}

	metricName := metricLoadDuration
	if operation == operationSave {
		metricName = metricSaveDuration
	}

	e.recordDurationMetrics(ctx, metricName, duration, operation, status)

	attrs := map[string]string{logAttrDurationMS: strconv.FormatFloat(toMilliseconds(duration), 'f', 3, 64)}
	if status == statusError {
		attrs[spanAttrErrorType] = err.Error()
	}

	e.finishTraceSpan(span, status, attrs)
}

// logQueryWithDuration logs SQL statements with execution time at debug level if a logger is configured.
func (e *Engine) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	e.logDebug(ctx, logMsgSQLExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
}

// logOperation logs operational information at info level if a logger is configured.
func (e *Engine) logOperation(ctx context.Context, action string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if e.logger != nil {
		e.logger.Info(logMsgOperation+action, args...)
	}
}

// logDebug prefers the contextual logger and falls back to the plain logger.
func (e *Engine) logDebug(ctx context.Context, message string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.DebugContext(ctx, message, args...)
		return
	}

	if e.logger != nil {
		e.logger.Debug(message, args...)
	}
}

// logWarn logs non-critical issues at warn level if a logger is configured.
func (e *Engine) logWarn(ctx context.Context, message string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.WarnContext(ctx, message, args...)
		return
	}

	if e.logger != nil {
		e.logger.Warn(message, args...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (e *Engine) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if e.contextualLogger != nil {
		e.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if e.logger != nil {
		e.logger.Error(message, allArgs...)
	}
}

// recordDurationMetrics records duration metrics, with context if the collector supports it.
func (e *Engine) recordDurationMetrics(ctx context.Context, metricName string, duration time.Duration, operation, status string) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          status,
	}

	if contextualCollector, ok := e.metricsCollector.(recordstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
		return
	}

	e.metricsCollector.RecordDuration(metricName, duration, labels)
}

// recordErrorMetrics counts database errors, with context if the collector supports it.
func (e *Engine) recordErrorMetrics(ctx context.Context, operation string) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          statusError,
	}

	if contextualCollector, ok := e.metricsCollector.(recordstore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricErrors, labels)
		return
	}

	e.metricsCollector.IncrementCounter(metricErrors, labels)
}

// startTraceSpan starts a tracing span if a tracing collector is configured.
func (e *Engine) startTraceSpan(ctx context.Context, name string, collection string) (context.Context, recordstore.SpanContext) {
	if e.tracingCollector == nil {
		return ctx, nil
	}

	return e.tracingCollector.StartSpan(ctx, name, map[string]string{
		spanAttrTable:      e.tableName,
		spanAttrDialect:    e.dialect,
		spanAttrCollection: collection,
	})
}

// finishTraceSpan finishes a tracing span if a tracing collector is configured.
func (e *Engine) finishTraceSpan(span recordstore.SpanContext, status string, attrs map[string]string) {
	if e.tracingCollector != nil && span != nil {
		e.tracingCollector.FinishSpan(span, status, attrs)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
