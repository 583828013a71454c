// Package observability provides OpenTelemetry-based instrumentation for
// filter parsing and lowering.
//
// All observability features are opt-in. When not configured, no-op
// implementations are used.
package observability

import "go.opentelemetry.io/otel/attribute"

// Instrumentation identity constants
const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/nlstn/go-filters"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/nlstn/go-filters"
)

// Span names.
const (
	SpanParse   = "filter.parse"
	SpanLower   = "filter.lower"
	SpanDBQuery = "filter.db.query"
)

// Filter semantic attribute keys.
const (
	AttrQueryLength = "filter.query.length"
	AttrTokenCount  = "filter.token.count"
	AttrDepth       = "filter.depth"
	AttrOutcome     = "filter.outcome"
	AttrCacheHit    = "filter.cache.hit"
	AttrTarget      = "filter.target"
	AttrErrorKind   = "filter.error.kind"
)

// Values of the filter.outcome attribute.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Values of the filter.error.kind attribute.
const (
	ErrorKindFormat     = "format"
	ErrorKindSchema     = "schema"
	ErrorKindEvaluation = "evaluation"
	ErrorKindOther      = "other"
)

// Log field keys for structured logging with trace context.
const (
	LogFieldQuery    = "filter"
	LogFieldTarget   = "target"
	LogFieldTraceID  = "trace_id"
	LogFieldSpanID   = "span_id"
	LogFieldDuration = "duration_ms"
	LogFieldError    = "error"
)

// QueryLengthAttr creates an attribute for the length of the query text.
func QueryLengthAttr(n int) attribute.KeyValue {
	return attribute.Int(AttrQueryLength, n)
}

// TokenCountAttr creates an attribute for the number of tokens.
func TokenCountAttr(n int) attribute.KeyValue {
	return attribute.Int(AttrTokenCount, n)
}

// DepthAttr creates an attribute for the nesting depth of the parsed tree.
func DepthAttr(n int) attribute.KeyValue {
	return attribute.Int(AttrDepth, n)
}

// OutcomeAttr creates an attribute for the parse outcome.
func OutcomeAttr(outcome string) attribute.KeyValue {
	return attribute.String(AttrOutcome, outcome)
}

// CacheHitAttr creates an attribute telling whether the filter came from the cache.
func CacheHitAttr(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// TargetAttr creates an attribute naming the lowering target.
func TargetAttr(target string) attribute.KeyValue {
	return attribute.String(AttrTarget, target)
}

// ErrorKindAttr creates an attribute for the error category.
func ErrorKindAttr(kind string) attribute.KeyValue {
	return attribute.String(AttrErrorKind, kind)
}
