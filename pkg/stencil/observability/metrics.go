package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records render metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordRender records one template render, top-level or child.
	RecordRender(ctx context.Context, identifier string, depth int, duration time.Duration, err error)

	// RecordSoftFail records a contained document execution failure.
	RecordSoftFail(ctx context.Context, identifier string)

	// RecordOutput records the size of a rendered buffer.
	RecordOutput(ctx context.Context, identifier string, sizeBytes int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	renders       metric.Int64Counter
	renderLatency metric.Float64Histogram
	renderErrors  metric.Int64Counter
	softFailures  metric.Int64Counter
	outputSize    metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("stencil")

	renders, err := meter.Int64Counter("stencil.render.count",
		metric.WithDescription("Number of template renders"),
	)
	if err != nil {
		return nil, err
	}

	renderLatency, err := meter.Float64Histogram("stencil.render.latency_ms",
		metric.WithDescription("Template render latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	renderErrors, err := meter.Int64Counter("stencil.render.errors",
		metric.WithDescription("Number of renders that returned an error"),
	)
	if err != nil {
		return nil, err
	}

	softFailures, err := meter.Int64Counter("stencil.document.soft_failures",
		metric.WithDescription("Number of document executions that failed and rendered empty"),
	)
	if err != nil {
		return nil, err
	}

	outputSize, err := meter.Int64Histogram("stencil.render.output_bytes",
		metric.WithDescription("Rendered output size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		renders:       renders,
		renderLatency: renderLatency,
		renderErrors:  renderErrors,
		softFailures:  softFailures,
		outputSize:    outputSize,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordRender records one render.
func (m *otelMetrics) RecordRender(ctx context.Context, identifier string, depth int, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("template", identifier),
		attribute.Bool("child", depth > 0),
	}

	m.renders.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.renderLatency.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))

	if err != nil {
		m.renderErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordSoftFail records a contained execution failure.
func (m *otelMetrics) RecordSoftFail(ctx context.Context, identifier string) {
	m.softFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("template", identifier),
	))
}

// RecordOutput records rendered output size.
func (m *otelMetrics) RecordOutput(ctx context.Context, identifier string, sizeBytes int64) {
	m.outputSize.Record(ctx, sizeBytes, metric.WithAttributes(
		attribute.String("template", identifier),
	))
}
