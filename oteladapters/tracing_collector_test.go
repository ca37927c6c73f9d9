package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-lending-go/oteladapters"
)

func newTracingCollector(t *testing.T) (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return oteladapters.NewTracingCollector(provider.Tracer("test")), exporter
}

func spanAttribute(span tracetest.SpanStub, key string) (string, bool) {
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			return attr.Value.AsString(), true
		}
	}

	return "", false
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	collector, exporter := newTracingCollector(t)

	ctx, spanCtx := collector.StartSpan(context.Background(), "library_lending.borrow", map[string]string{
		"operation": "borrow",
		"isbn":      "ISBN-001",
	})
	require.NotNil(t, spanCtx)
	spanCtx.AddAttribute("user_id", "U1")
	collector.FinishSpan(spanCtx, "success", map[string]string{"duration_ms": "1.250"})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]

	assert.Equal(t, "library_lending.borrow", span.Name)
	assert.Equal(t, codes.Ok, span.Status.Code)
	assert.True(t, span.SpanContext.Equal(trace.SpanContextFromContext(ctx)))

	for key, expected := range map[string]string{
		"operation":   "borrow",
		"isbn":        "ISBN-001",
		"user_id":     "U1",
		"duration_ms": "1.250",
	} {
		value, found := spanAttribute(span, key)
		assert.True(t, found, "attribute %s missing", key)
		assert.Equal(t, expected, value)
	}
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status       string
		expectedCode codes.Code
	}{
		{status: "success", expectedCode: codes.Ok},
		{status: "error", expectedCode: codes.Error},
		{status: "canceled", expectedCode: codes.Error},
		{status: "rejected", expectedCode: codes.Unset},
		{status: "not_found", expectedCode: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			collector, exporter := newTracingCollector(t)

			_, spanCtx := collector.StartSpan(context.Background(), "op", nil)
			collector.FinishSpan(spanCtx, tc.status, nil)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expectedCode, spans[0].Status.Code)

			if tc.expectedCode == codes.Unset {
				value, found := spanAttribute(spans[0], "status")
				assert.True(t, found)
				assert.Equal(t, tc.status, value)
			}
		})
	}
}

func Test_TracingCollector_IgnoresForeignSpanContext(t *testing.T) {
	collector, exporter := newTracingCollector(t)

	collector.FinishSpan(nil, "success", map[string]string{"k": "v"})

	assert.Empty(t, exporter.GetSpans())
}
