package tracing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/rafflechain/settler"

var ErrTracingDialAddrEmpty = errors.New("tracing enabled, but tracing address empty")

// Settings is embedded by components which open spans.
type Settings struct {
	Enabled    bool
	Attributes []attribute.KeyValue
}

// Enable returns Settings with tracing switched on. The file of the caller is added as attribute.
func Enable(attr ...attribute.KeyValue) Settings {
	s := Settings{Enabled: true}
	s.Attributes = append(s.Attributes, attr...)

	_, file, _, ok := runtime.Caller(1)
	if ok {
		s.Attributes = append(s.Attributes, attribute.String("file", file))
	}
	return s
}

func (s Settings) Start(ctx context.Context, spanName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartTracing(ctx, spanName, s.Enabled, append(attributes, s.Attributes...)...)
}

func StartTracing(ctx context.Context, spanName string, tracingEnabled bool, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	if !tracingEnabled {
		return ctx, nil
	}

	tracer := otel.Tracer(tracerName)
	if len(attributes) > 0 {
		return tracer.Start(ctx, spanName, trace.WithAttributes(attributes...))
	}

	return tracer.Start(ctx, spanName)
}

func EndTracing(span trace.Span, err error) {
	if span == nil {
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Init registers an otlp grpc exporter as global trace provider. The returned func flushes and stops it.
func Init(ctx context.Context, logger *slog.Logger, serviceName string, dialAddr string, sample int) (func(), error) {
	if dialAddr == "" {
		return nil, ErrTracingDialAddrEmpty
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(dialAddr), otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	sampler := sdktrace.AlwaysSample()
	if sample > 0 && sample < 100 {
		sampler = sdktrace.TraceIDRatioBased(float64(sample) / 100)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		)),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetTracerProvider(tp)

	cleanup := func() {
		err := tp.Shutdown(context.Background())
		if err != nil {
			logger.Error("Failed to shutdown tracing provider", slog.String("err", err.Error()))
		}
	}

	return cleanup, nil
}
