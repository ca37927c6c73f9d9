package lending

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-lending-go/core"
	"github.com/AntonStoeckl/library-lending-go/recordstore"
)

const (
	// OperationDurationMetric tracks the duration of engine operations.
	OperationDurationMetric = "library_operation_duration_seconds"
	// OperationsMetric counts engine operations.
	OperationsMetric = "library_operations_total"

	// StatusSuccess indicates a completed operation.
	StatusSuccess = "success"
	// StatusRejected indicates an operation refused by a business rule, nothing was changed.
	StatusRejected = "rejected"
	// StatusError indicates an operation that failed on storage.
	StatusError = "error"

	operationOpen         = "open"
	operationAddBook      = "add_book"
	operationRegisterUser = "register_user"
	operationBorrow       = "borrow"
	operationReturn       = "return"

	logMsgOperationStarted   = "lending operation started"
	logMsgOperationCompleted = "lending operation completed"
	logMsgOperationRejected  = "lending operation rejected"
	logMsgOperationFailed    = "lending operation failed"
	logMsgPartialCommit      = "catalog saved but directory save failed, persisted collections are inconsistent"
	logMsgDanglingLoans      = "directory references books missing from the catalog"
	logMsgReconciled         = "on-loan flags reconciled from borrowed sets"

	logAttrOperation       = "operation"
	logAttrOperationID     = "operation_id"
	logAttrUserID          = "user_id"
	logAttrISBN            = "isbn"
	logAttrStatus          = "status"
	logAttrDurationMS      = "duration_ms"
	logAttrBusinessOutcome = "business_outcome"
	logAttrOccurredAt      = "occurred_at"
	logAttrError           = "error"
	logAttrCount           = "count"

	spanNamePrefix = "library_lending."
)

// Interface aliases so that callers can configure the Engine without importing recordstore.

// Logger interface for basic logging of engine operations.
type Logger = recordstore.Logger

// ContextualLogger interface for context-aware logging of engine operations.
type ContextualLogger = recordstore.ContextualLogger

// MetricsCollector interface for collecting engine metrics.
type MetricsCollector = recordstore.MetricsCollector

// TracingCollector interface for tracing engine operations.
type TracingCollector = recordstore.TracingCollector

// operation carries the observability state of one running engine operation.
type operation struct {
	ctx        context.Context
	name       string
	id         string
	start      time.Time
	span       recordstore.SpanContext
	attributes []any
}

func (e *Engine) startOperation(ctx context.Context, name string, attributes ...any) *operation {
	op := &operation{
		ctx:        ctx,
		name:       name,
		id:         uuid.NewString(),
		start:      time.Now(),
		attributes: attributes,
	}

	if e.tracingCollector != nil {
		spanAttrs := map[string]string{
			logAttrOperation:   name,
			logAttrOperationID: op.id,
		}

		for i := 0; i+1 < len(attributes); i += 2 {
			if key, ok := attributes[i].(string); ok {
				if value, ok := attributes[i+1].(string); ok {
					spanAttrs[key] = value
				}
			}
		}

		op.ctx, op.span = e.tracingCollector.StartSpan(ctx, spanNamePrefix+name, spanAttrs)
	}

	e.logDebug(op.ctx, logMsgOperationStarted, op.args()...)

	return op
}

// finish records the outcome. event may be nil for operations that don't decide.
func (e *Engine) finish(op *operation, event core.DomainEvent, err error) {
	duration := time.Since(op.start)
	status := classify(err)

	args := op.args()
	args = append(args, logAttrStatus, status, logAttrDurationMS, toMilliseconds(duration))

	if event != nil {
		args = append(args,
			logAttrBusinessOutcome, event.IsEventType(),
			logAttrOccurredAt, event.HasOccurredAt().Format(time.RFC3339Nano),
		)
	}

	switch status {
	case StatusSuccess:
		e.logInfo(op.ctx, logMsgOperationCompleted, args...)
	case StatusRejected:
		e.logInfo(op.ctx, logMsgOperationRejected, append(args, logAttrError, err.Error())...)
	default:
		e.logError(op.ctx, logMsgOperationFailed, append(args, logAttrError, err.Error())...)
	}

	e.recordMetrics(op.ctx, op.name, status, duration)
	e.finishSpan(op, status, duration, err)
}

func (op *operation) args() []any {
	args := []any{logAttrOperation, op.name, logAttrOperationID, op.id}

	return append(args, op.attributes...)
}

// classify treats every storage failure as an error and everything else as a rejection.
func classify(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, core.ErrStorageUnwritable), errors.Is(err, core.ErrStorageUnreadable):
		return StatusError
	default:
		return StatusRejected
	}
}

func (e *Engine) recordMetrics(ctx context.Context, name string, status string, duration time.Duration) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		logAttrOperation: name,
		logAttrStatus:    status,
	}

	if contextualCollector, ok := e.metricsCollector.(recordstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, OperationDurationMetric, duration, labels)
		contextualCollector.IncrementCounterContext(ctx, OperationsMetric, labels)

		return
	}

	e.metricsCollector.RecordDuration(OperationDurationMetric, duration, labels)
	e.metricsCollector.IncrementCounter(OperationsMetric, labels)
}

func (e *Engine) finishSpan(op *operation, status string, duration time.Duration, err error) {
	if e.tracingCollector == nil || op.span == nil {
		return
	}

	attrs := map[string]string{
		logAttrStatus:     status,
		logAttrDurationMS: strconv.FormatFloat(toMilliseconds(duration), 'f', 3, 64),
	}

	if err != nil {
		attrs[logAttrError] = err.Error()
	}

	e.tracingCollector.FinishSpan(op.span, status, attrs)
}

func (e *Engine) logDebug(ctx context.Context, msg string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.DebugContext(ctx, msg, args...)
	} else if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Engine) logInfo(ctx context.Context, msg string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.InfoContext(ctx, msg, args...)
	} else if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Engine) logWarn(ctx context.Context, msg string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.WarnContext(ctx, msg, args...)
	} else if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}

func (e *Engine) logError(ctx context.Context, msg string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.ErrorContext(ctx, msg, args...)
	} else if e.logger != nil {
		e.logger.Error(msg, args...)
	}
}

func toMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
