package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AntonStoeckl/library-lending-go/oteladapters"
	"github.com/AntonStoeckl/library-lending-go/promadapters"
	"github.com/AntonStoeckl/library-lending-go/recordstore"
)

const (
	instrumentationName = "github.com/AntonStoeckl/library-lending-go"
	shutdownTimeout     = 5 * time.Second
	metricsFileMode     = 0o600
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Observability bundles the collectors handed to the storage engine and the lending engine.
// Metrics and Tracing are nil when LIBRARY_METRICS is "none".
type Observability struct {
	Logger           *slog.Logger
	ContextualLogger recordstore.ContextualLogger
	Metrics          recordstore.MetricsCollector
	Tracing          recordstore.TracingCollector

	prometheus     *promadapters.MetricsCollector
	meterProvider  *sdkmetric.MeterProvider
	metricReader   *sdkmetric.ManualReader
	tracerProvider *sdktrace.TracerProvider
	loggerProvider *sdklog.LoggerProvider
	metricsFile    string
}

// NewObservability creates the loggers on top of handler and the collectors selected by cfg.Metrics.
func NewObservability(cfg Config, handler slog.Handler) (*Observability, error) {
	o := &Observability{
		Logger:           slog.New(handler),
		ContextualLogger: oteladapters.NewSlogBridgeLoggerWithHandler(handler),
		metricsFile:      cfg.MetricsFile,
	}

	switch cfg.Metrics {
	case MetricsNone:
		// nothing to collect

	case MetricsPrometheus:
		collector, err := promadapters.NewMetricsCollector(prometheus.NewRegistry())
		if err != nil {
			return nil, err
		}

		o.prometheus = collector
		o.Metrics = collector

	case MetricsOTel:
		res := resource.Default()

		o.metricReader = sdkmetric.NewManualReader()
		o.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(o.metricReader),
			sdkmetric.WithResource(res),
		)
		o.tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithResource(res))

		exporter, err := oteladapters.NewSlogExporter(handler)
		if err != nil {
			return nil, err
		}

		o.loggerProvider = sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)),
			sdklog.WithResource(res),
		)

		// storage and lending logs travel through the bridge and reach handler via the exporter
		o.ContextualLogger = oteladapters.NewSlogBridgeLogger(
			instrumentationName,
			otelslog.WithLoggerProvider(o.loggerProvider),
		)
		o.Metrics = oteladapters.NewMetricsCollector(o.meterProvider.Meter(instrumentationName))
		o.Tracing = oteladapters.NewTracingCollector(o.tracerProvider.Tracer(instrumentationName))

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMetrics, cfg.Metrics)
	}

	return o, nil
}

// Shutdown writes the collected metrics to the metrics file, if one is configured, and shuts
// the OpenTelemetry providers down.
func (o *Observability) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var err error

	if o.metricsFile != "" {
		err = errors.Join(err, o.writeMetricsFile(ctx))
	}

	if o.tracerProvider != nil {
		err = errors.Join(err, o.tracerProvider.Shutdown(ctx))
	}

	if o.meterProvider != nil {
		err = errors.Join(err, o.meterProvider.Shutdown(ctx))
	}

	if o.loggerProvider != nil {
		err = errors.Join(err, o.loggerProvider.Shutdown(ctx))
	}

	return err
}

func (o *Observability) writeMetricsFile(ctx context.Context) error {
	switch {
	case o.prometheus != nil:
		return o.prometheus.WriteToTextfile(o.metricsFile)

	case o.metricReader != nil:
		var rm metricdata.ResourceMetrics
		if err := o.metricReader.Collect(ctx, &rm); err != nil {
			return fmt.Errorf("collect metrics: %w", err)
		}

		payload, err := json.MarshalIndent(rm.ScopeMetrics, "", "  ")
		if err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}

		return os.WriteFile(o.metricsFile, payload, metricsFileMode)

	default:
		return nil
	}
}
