package tracing

import (
	"context"
	"sync"
	"time"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/settings"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

var (
	mu sync.Mutex
	tp *sdktrace.TracerProvider
)

// InitTracer installs the global otel tracer provider exporting to the configured OTLP/HTTP
// collector. It is a noop when tracing is disabled or a provider is already installed.
func InitTracer(ctx context.Context, tSettings *settings.Settings) error {
	if !tSettings.Tracing.Enabled {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	if tp != nil {
		return nil
	}

	if tSettings.Tracing.CollectorURL == nil {
		return errors.NewConfigurationError("tracing_collectorURL is not set")
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(tSettings.Tracing.CollectorURL.Host),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return errors.NewProcessingError("failed to create OTLP exporter", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(tSettings.ServiceName),
		),
	)
	if err != nil {
		return errors.NewProcessingError("failed to create resource", err)
	}

	setTracerProvider(sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(tSettings.Tracing.SampleRate))),
		sdktrace.WithResource(res),
	))

	return nil
}

func setTracerProvider(provider *sdktrace.TracerProvider) {
	tp = provider

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// ShutdownTracer flushes and stops the global tracer provider. Safe to call more than once.
func ShutdownTracer(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if tp == nil {
		return nil
	}

	if err := tp.ForceFlush(ctx); err != nil {
		return errors.NewProcessingError("failed to flush spans", err)
	}

	if err := tp.Shutdown(ctx); err != nil {
		return errors.NewProcessingError("failed to shutdown tracer", err)
	}

	tp = nil

	return nil
}
