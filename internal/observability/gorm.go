package observability

import (
	"context"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	gormSpanKey             = "filters:gorm:span"
	gormStartTimeKey        = "filters:gorm:start"
	gormTimingMetricKey     = "filters:gorm:timing_metric"
	gormCallbacksName       = "filters"
	gormTimingCallbacksName = "filters_server_timing"
)

// RegisterGORMCallbacks registers GORM callbacks that trace the read queries
// filtered results are fetched with. Registration is skipped unless a tracer
// provider is configured and detailed DB tracing is enabled.
func RegisterGORMCallbacks(db *gorm.DB, cfg *Config) error {
	if cfg == nil || cfg.TracerProvider == nil || !cfg.EnableDetailedDBTracing {
		return nil
	}

	tracer := cfg.Tracer()

	if err := db.Callback().Query().Before("gorm:query").Register(gormCallbacksName+":before_query", beforeQuery(tracer)); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register(gormCallbacksName+":after_query", afterQuery(tracer, cfg, "SELECT")); err != nil {
		return err
	}

	if err := db.Callback().Row().Before("gorm:row").Register(gormCallbacksName+":before_row", beforeQuery(tracer)); err != nil {
		return err
	}
	if err := db.Callback().Row().After("gorm:row").Register(gormCallbacksName+":after_row", afterQuery(tracer, cfg, "ROW")); err != nil {
		return err
	}

	return nil
}

// RegisterServerTimingCallbacks registers GORM callbacks that add a "db"
// Server-Timing metric for every read query whose context carries a
// Server-Timing header. It works without OpenTelemetry.
func RegisterServerTimingCallbacks(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register(gormTimingCallbacksName+":before_query", beforeTiming); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register(gormTimingCallbacksName+":after_query", afterTiming); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register(gormTimingCallbacksName+":before_row", beforeTiming); err != nil {
		return err
	}
	return db.Callback().Row().After("gorm:row").Register(gormTimingCallbacksName+":after_row", afterTiming)
}

func beforeTiming(db *gorm.DB) {
	if db.Statement == nil || db.Statement.Context == nil {
		return
	}
	timing := servertiming.FromContext(db.Statement.Context)
	if timing == nil {
		return
	}
	db.InstanceSet(gormTimingMetricKey, timing.NewMetric("db").Start())
}

func afterTiming(db *gorm.DB) {
	v, ok := db.InstanceGet(gormTimingMetricKey)
	if !ok {
		return
	}
	if m, ok := v.(*servertiming.Metric); ok {
		m.Stop()
	}
}

func beforeQuery(tracer *Tracer) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		ctx, span := tracer.StartSpan(ctx, SpanDBQuery,
			attribute.String("db.system", db.Dialector.Name()),
		)

		db.Statement.Context = ctx
		db.InstanceSet(gormSpanKey, span)
		db.InstanceSet(gormStartTimeKey, time.Now())
	}
}

func afterQuery(tracer *Tracer, cfg *Config, operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		spanVal, ok := db.InstanceGet(gormSpanKey)
		if !ok {
			return
		}
		span, ok := spanVal.(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		if db.Statement != nil {
			if db.Statement.Table != "" {
				span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
			}
			span.SetAttributes(
				attribute.String("db.operation", operation),
				attribute.Int64("db.rows_affected", db.RowsAffected),
			)
		}

		if db.Error != nil {
			tracer.RecordError(span, db.Error)
		}

		if startVal, ok := db.InstanceGet(gormStartTimeKey); ok {
			if start, ok := startVal.(time.Time); ok {
				cfg.Metrics().RecordDBQuery(db.Statement.Context, operation, time.Since(start))
			}
		}
	}
}
