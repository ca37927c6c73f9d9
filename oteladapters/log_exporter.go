package oteladapters

import (
	"context"
	"errors"
	"log/slog"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// otelslog maps slog.LevelInfo (0) to log.SeverityInfo (9).
const slogSeverityOffset = 9

var ErrNilHandler = errors.New("slog handler must not be nil")

// SlogExporter is an OpenTelemetry log exporter writing the records to a slog.Handler.
// Records of a sampled span carry trace_id and span_id attributes.
type SlogExporter struct {
	handler slog.Handler
}

// NewSlogExporter creates an exporter writing to handler.
func NewSlogExporter(handler slog.Handler) (*SlogExporter, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	return &SlogExporter{handler: handler}, nil
}

// Export writes every record the handler is enabled for.
func (e *SlogExporter) Export(ctx context.Context, records []sdklog.Record) error {
	var err error

	for i := range records {
		record := &records[i]
		level := slog.Level(int(record.Severity()) - slogSeverityOffset)

		if !e.handler.Enabled(ctx, level) {
			continue
		}

		slogRecord := slog.NewRecord(record.Timestamp(), level, record.Body().AsString(), 0)

		record.WalkAttributes(func(kv otellog.KeyValue) bool {
			slogRecord.AddAttrs(toSlogAttr(kv))
			return true
		})

		if record.TraceID().IsValid() {
			slogRecord.AddAttrs(
				slog.String(logAttrTraceID, record.TraceID().String()),
				slog.String(logAttrSpanID, record.SpanID().String()),
			)
		}

		err = errors.Join(err, e.handler.Handle(ctx, slogRecord))
	}

	return err
}

// Shutdown is a no-op, the handler's writer is owned by the caller.
func (e *SlogExporter) Shutdown(context.Context) error {
	return nil
}

// ForceFlush is a no-op, records are written synchronously.
func (e *SlogExporter) ForceFlush(context.Context) error {
	return nil
}

func toSlogAttr(kv otellog.KeyValue) slog.Attr {
	switch kv.Value.Kind() {
	case otellog.KindString:
		return slog.String(kv.Key, kv.Value.AsString())
	case otellog.KindInt64:
		return slog.Int64(kv.Key, kv.Value.AsInt64())
	case otellog.KindFloat64:
		return slog.Float64(kv.Key, kv.Value.AsFloat64())
	case otellog.KindBool:
		return slog.Bool(kv.Key, kv.Value.AsBool())
	default:
		return slog.String(kv.Key, kv.Value.String())
	}
}

var _ sdklog.Exporter = (*SlogExporter)(nil)
