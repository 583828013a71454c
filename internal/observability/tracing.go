package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nlstn/go-filters/internal/filtererrors"
)

// Tracer wraps an OpenTelemetry tracer with filter-specific span creation methods.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// NewTracer creates a new Tracer using the given TracerProvider.
func NewTracer(tp trace.TracerProvider, serviceName string) *Tracer {
	return &Tracer{
		tracer:      tp.Tracer(TracerName),
		serviceName: serviceName,
	}
}

// StartSpan starts a new span with the given name and attributes.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartParse starts a span for parsing one query.
func (t *Tracer) StartParse(ctx context.Context, query string, recordQuery bool) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{QueryLengthAttr(len(query))}
	if recordQuery {
		attrs = append(attrs, attribute.String("filter.query", query))
	}
	return t.tracer.Start(ctx, SpanParse, trace.WithAttributes(attrs...))
}

// EndParse records the parse result on span and ends it.
func (t *Tracer) EndParse(span trace.Span, tokens, depth int, cacheHit bool, err error) {
	defer span.End()
	span.SetAttributes(TokenCountAttr(tokens), CacheHitAttr(cacheHit))
	if err != nil {
		span.SetAttributes(OutcomeAttr(OutcomeError), ErrorKindAttr(ErrorKind(err)))
		t.RecordError(span, err)
		return
	}
	span.SetAttributes(OutcomeAttr(OutcomeSuccess), DepthAttr(depth))
}

// StartLower starts a span for lowering a filter into target.
func (t *Tracer) StartLower(ctx context.Context, target string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanLower, trace.WithAttributes(TargetAttr(target)))
}

// RecordError records an error on the span.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// ErrorKind classifies err into one of the ErrorKind* values.
func ErrorKind(err error) string {
	switch {
	case filtererrors.IsFormat(err):
		return ErrorKindFormat
	case filtererrors.IsSchema(err):
		return ErrorKindSchema
	case filtererrors.IsEvaluation(err):
		return ErrorKindEvaluation
	default:
		return ErrorKindOther
	}
}

// LoggerWithTrace returns a logger enriched with trace context.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}
	return logger.With(
		slog.String(LogFieldTraceID, span.SpanContext().TraceID().String()),
		slog.String(LogFieldSpanID, span.SpanContext().SpanID().String()),
	)
}
