package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName identifies this process in traces and metrics.
const ServiceName = "resale-hub-api"

// Tracer starts every span in the process. It is a no-op tracer until InitTracing enables export.
var Tracer trace.Tracer = otel.Tracer(ServiceName)

// TracingConfig selects the span exporter and sampling.
type TracingConfig struct {
	Enabled      bool
	Environment  string
	Exporter     string // "otlp" or "stdout"
	OTLPEndpoint string
	SamplerRatio float64
}

// ShutdownFunc flushes pending spans.
type ShutdownFunc func(context.Context) error

// InitTracing installs a global tracer provider. With tracing disabled it
// returns a no-op shutdown and leaves the default provider in place.
func InitTracing(ctx context.Context, cfg TracingConfig) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("tracing exporter: %w", err)
	}

	res := resource.NewSchemaless(
		semconv.ServiceName(ServiceName),
		semconv.DeploymentEnvironment(cfg.Environment),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SamplerRatio)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	Tracer = tp.Tracer(ServiceName)

	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "otlp":
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint), otlptracehttp.WithInsecure())
	case "", "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	return nil, fmt.Errorf("unknown exporter %q", cfg.Exporter)
}

// samplerFor keeps every trace at ratio >= 1 and none at ratio <= 0.
func samplerFor(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// Span is a service-level span. A nil *Span is valid and does nothing.
type Span struct {
	span trace.Span
}

// StartSpan starts an internal span named "<component>.<operation>".
func StartSpan(ctx context.Context, component, operation string, attrs ...attribute.KeyValue) (context.Context, *Span) {
	ctx, span := Tracer.Start(ctx, component+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, &Span{span: span}
}

// End marks the span failed when err is non-nil and ends it.
func (s *Span) End(err error) {
	if s == nil || s.span == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}

// TraceID returns the hex trace id, or "" for a nil span.
func (s *Span) TraceID() string {
	if s == nil || s.span == nil {
		return ""
	}
	return s.span.SpanContext().TraceID().String()
}
