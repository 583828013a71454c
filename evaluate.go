package filters

import (
	"context"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormschema "gorm.io/gorm/schema"

	"github.com/nlstn/go-filters/internal/evaluator"
	"github.com/nlstn/go-filters/internal/predicate"
	"github.com/nlstn/go-filters/internal/sqlfilter"
)

// Evaluator types for the two built-in targets.
type (
	// PredicateEvaluator lowers filters into in-memory record predicates.
	PredicateEvaluator = evaluator.Evaluator[predicate.Expr]
	// PredicateExpr is one lowered in-memory node.
	PredicateExpr = predicate.Expr

	// GormEvaluator lowers filters into GORM clause expressions.
	GormEvaluator = evaluator.Evaluator[clause.Expression]
	// GormTarget maps fields to columns for a GormEvaluator.
	GormTarget = sqlfilter.Target
	// SQLOption configures a GormTarget.
	SQLOption = sqlfilter.Option

	// EvaluatorOption configures either evaluator.
	EvaluatorOption = evaluator.Option
)

// Evaluator options.
var (
	WithEvaluatorLogger        = evaluator.WithLogger
	WithEvaluatorObservability = evaluator.WithObservability
)

// WithColumn maps field to a fixed column name.
func WithColumn(field, column string) SQLOption {
	return sqlfilter.WithColumn(field, column)
}

// WithTable qualifies every column with table.
func WithTable(table string) SQLOption {
	return sqlfilter.WithTable(table)
}

// WithNamer derives column names with namer.
func WithNamer(namer gormschema.Namer) SQLOption {
	return sqlfilter.WithNamer(namer)
}

// NewPredicateEvaluator returns an evaluator with the built-in in-memory
// strategies. Records may be structs, pointers to structs or string-keyed
// maps; fields are matched case-insensitively.
func NewPredicateEvaluator(opts ...EvaluatorOption) *PredicateEvaluator {
	return predicate.New(opts...)
}

// NewGormTarget creates a column mapping for NewGormEvaluator.
func NewGormTarget(opts ...SQLOption) *GormTarget {
	return sqlfilter.NewTarget(opts...)
}

// NewGormEvaluator returns an evaluator with the built-in SQL strategies. A
// nil target follows GORM's default naming strategy.
func NewGormEvaluator(target *GormTarget, opts ...EvaluatorOption) *GormEvaluator {
	return sqlfilter.New(target, opts...)
}

// ApplyToSlice returns the records f matches, in their original order. A nil
// filter matches every record.
func ApplyToSlice[R any](e *PredicateEvaluator, f *Filter, records []R) ([]R, error) {
	return ApplyToSliceContext(context.Background(), e, f, records)
}

// ApplyToSliceContext is ApplyToSlice with a context carrying the caller's
// trace.
func ApplyToSliceContext[R any](ctx context.Context, e *PredicateEvaluator, f *Filter, records []R) ([]R, error) {
	if f == nil {
		return slices.Clone(records), nil
	}
	expr, err := e.LowerContext(ctx, f)
	if err != nil {
		return nil, err
	}
	return predicate.Filter(records, predicate.Compile[R](expr))
}

// Matches reports whether record satisfies f. A nil filter matches every
// record.
func Matches(e *PredicateEvaluator, f *Filter, record any) (bool, error) {
	if f == nil {
		return true, nil
	}
	expr, err := e.Lower(f)
	if err != nil {
		return false, err
	}
	return predicate.Match(expr, record)
}

// ApplyToDB adds f as a WHERE condition to db. A nil filter returns db
// unchanged.
func ApplyToDB(e *GormEvaluator, db *gorm.DB, f *Filter) (*gorm.DB, error) {
	if f == nil {
		return db, nil
	}
	ctx := context.Background()
	if db.Statement != nil && db.Statement.Context != nil {
		ctx = db.Statement.Context
	}
	expr, err := e.LowerContext(ctx, f)
	if err != nil {
		return nil, err
	}
	return sqlfilter.Apply(db, expr), nil
}
