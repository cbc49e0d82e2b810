package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Span is the minimal span contract engines use; it deliberately hides the
// full otel.Span surface so call sites stay engine-focused.
type Span interface {
	End()
	SetStatus(ok bool, description string)
	SetAttribute(key string, value interface{})
}

// StartSpanFunc starts a span named operation and returns the derived
// context plus the span handle. Repositories and engines take this as a
// constructor argument instead of reaching for a package-level tracer.
type StartSpanFunc func(ctx context.Context, operation string) (context.Context, Span)

type otelSpan struct{ span trace.Span }

func (s *otelSpan) End() { s.span.End() }

func (s *otelSpan) SetStatus(ok bool, description string) {
	if ok {
		s.span.SetStatus(codes.Ok, description)
		return
	}
	s.span.SetStatus(codes.Error, description)
}

func (s *otelSpan) SetAttribute(key string, value interface{}) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	}
}

// NewTracerProvider builds an SDK tracer provider with no remote exporter
// wired (see DESIGN.md: the OTLP collector endpoint is out of scope for
// this core). Spans are still created, sampled, and timed in-process,
// which is what the circuit breaker and repository layers need.
func NewTracerProvider(serviceName string) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return tp
}

// NewStartSpanFunc adapts an otel Tracer to StartSpanFunc.
func NewStartSpanFunc(serviceName string) StartSpanFunc {
	tracer := otel.Tracer(serviceName)
	return func(ctx context.Context, operation string) (context.Context, Span) {
		ctx, span := tracer.Start(ctx, operation)
		return ctx, &otelSpan{span: span}
	}
}
