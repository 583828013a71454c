package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricParseCount      = "filter.parse.count"
	MetricParseErrors     = "filter.parse.errors"
	MetricParseDuration   = "filter.parse.duration"
	MetricCacheHits       = "filter.cache.hits"
	MetricLowerErrors     = "filter.lower.errors"
	MetricDBQueryDuration = "filter.db.query.duration"
)

// Metrics holds the filter metric instruments.
type Metrics struct {
	parseCount      metric.Int64Counter
	parseErrors     metric.Int64Counter
	parseDuration   metric.Float64Histogram
	cacheHits       metric.Int64Counter
	lowerErrors     metric.Int64Counter
	dbQueryDuration metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(MeterName)
	m := &Metrics{}

	// Instrument creation only fails on invalid parameters; fall back to a
	// bare instrument so the remaining metrics still work.
	var err error

	m.parseCount, err = meter.Int64Counter(
		MetricParseCount,
		metric.WithDescription("Total number of parsed filter queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		m.parseCount, _ = meter.Int64Counter(MetricParseCount)
	}

	m.parseErrors, err = meter.Int64Counter(
		MetricParseErrors,
		metric.WithDescription("Number of filter queries rejected by the parser"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		m.parseErrors, _ = meter.Int64Counter(MetricParseErrors)
	}

	m.parseDuration, err = meter.Float64Histogram(
		MetricParseDuration,
		metric.WithDescription("Duration of filter parsing in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.parseDuration, _ = meter.Float64Histogram(MetricParseDuration)
	}

	m.cacheHits, err = meter.Int64Counter(
		MetricCacheHits,
		metric.WithDescription("Number of filters served from the parse cache"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		m.cacheHits, _ = meter.Int64Counter(MetricCacheHits)
	}

	m.lowerErrors, err = meter.Int64Counter(
		MetricLowerErrors,
		metric.WithDescription("Number of filters that could not be lowered"),
		metric.WithUnit("{filter}"),
	)
	if err != nil {
		m.lowerErrors, _ = meter.Int64Counter(MetricLowerErrors)
	}

	m.dbQueryDuration, err = meter.Float64Histogram(
		MetricDBQueryDuration,
		metric.WithDescription("Duration of filtered database queries in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.dbQueryDuration, _ = meter.Float64Histogram(MetricDBQueryDuration)
	}

	return m
}

// RecordParse records one parse attempt. Cache hits are counted separately
// and are not timed.
func (m *Metrics) RecordParse(ctx context.Context, duration time.Duration, err error) {
	m.parseCount.Add(ctx, 1)
	m.parseDuration.Record(ctx, float64(duration.Microseconds())/1000)
	if err != nil {
		m.parseErrors.Add(ctx, 1, metric.WithAttributes(ErrorKindAttr(ErrorKind(err))))
	}
}

// RecordCacheHit records a filter served from the parse cache.
func (m *Metrics) RecordCacheHit(ctx context.Context) {
	m.parseCount.Add(ctx, 1)
	m.cacheHits.Add(ctx, 1)
}

// RecordLowerError records a failed lowering into target.
func (m *Metrics) RecordLowerError(ctx context.Context, target string, err error) {
	m.lowerErrors.Add(ctx, 1, metric.WithAttributes(
		TargetAttr(target),
		ErrorKindAttr(ErrorKind(err)),
	))
}

// RecordDBQuery records metrics for a database query.
func (m *Metrics) RecordDBQuery(ctx context.Context, operation string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("db.operation", operation))
	m.dbQueryDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}
