// Package sqlfilter lowers filters into GORM clause expressions, so they run
// as WHERE conditions in the database.
package sqlfilter

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nlstn/go-filters/internal/ast"
	"github.com/nlstn/go-filters/internal/evaluator"
	"github.com/nlstn/go-filters/internal/filtererrors"
)

// TargetName identifies the GORM target in spans and metrics.
const TargetName = "gorm"

// New returns an evaluator over target with the built-in strategies
// registered. A nil target uses NewTarget().
func New(target *Target, opts ...evaluator.Option) *evaluator.Evaluator[clause.Expression] {
	if target == nil {
		target = NewTarget()
	}
	e := evaluator.New[clause.Expression](TargetName, target, opts...)
	RegisterDefaults(e)
	return e
}

// RegisterDefaults registers the built-in strategies on e.
func RegisterDefaults(e *evaluator.Evaluator[clause.Expression]) {
	e.RegisterBinary(ast.KindAnd, Template("(? AND ?)"))
	e.RegisterBinary(ast.KindOr, Template("(? OR ?)"))
	e.RegisterUnary(ast.KindNot, func(operand clause.Expression) (clause.Expression, error) {
		return clause.Expr{SQL: "NOT (?)", Vars: []any{operand}}, nil
	})

	e.RegisterBinary(ast.KindEqual, equal)
	e.RegisterBinary(ast.KindGreaterThan, Template("? > ?"))
	e.RegisterBinary(ast.KindGreaterThanOrEqual, Template("? >= ?"))
	e.RegisterBinary(ast.KindLessThan, Template("? < ?"))
	e.RegisterBinary(ast.KindLessThanOrEqual, Template("? <= ?"))

	e.RegisterBinary(ast.KindContains, Like(ast.KindContains, true, true))
	e.RegisterBinary(ast.KindStartsWith, Like(ast.KindStartsWith, false, true))
	e.RegisterBinary(ast.KindEndsWith, Like(ast.KindEndsWith, true, false))
}

// Template builds a strategy that substitutes the two operands for the two
// placeholders of sql, e.g. "? LIKE ?".
func Template(sql string) evaluator.BinaryFunc[clause.Expression] {
	return func(left, right clause.Expression) (clause.Expression, error) {
		return clause.Expr{SQL: sql, Vars: []any{left, right}}, nil
	}
}

// Like builds a substring strategy. The constant is escaped, wrapped in the
// requested wildcards and matched with LIKE ... ESCAPE '\'.
func Like(kind ast.Kind, prefixWildcard, suffixWildcard bool) evaluator.BinaryFunc[clause.Expression] {
	return func(left, right clause.Expression) (clause.Expression, error) {
		c, ok := right.(Constant)
		if !ok {
			return nil, filtererrors.EvaluationCause(filtererrors.ErrUnsupportedOperation, string(kind),
				fmt.Errorf("pattern must be a constant, got %T", right))
		}
		if c.Value == nil {
			// never true, like the in-memory target
			return clause.Expr{SQL: "1 = 0"}, nil
		}
		s, ok := c.Value.(string)
		if !ok {
			return nil, filtererrors.EvaluationCause(filtererrors.ErrNotComparable, string(kind),
				fmt.Errorf("pattern must be a string, got %T", c.Value))
		}
		pattern := Constant{Value: likePattern(s, prefixWildcard, suffixWildcard)}
		return clause.Expr{SQL: "? LIKE ? " + likeEscapeClause, Vars: []any{left, pattern}}, nil
	}
}

func equal(left, right clause.Expression) (clause.Expression, error) {
	if IsNull(right) {
		return clause.Expr{SQL: "? IS NULL", Vars: []any{left}}, nil
	}
	return clause.Expr{SQL: "? = ?", Vars: []any{left, right}}, nil
}

// Apply adds expr to the WHERE clause of db.
func Apply(db *gorm.DB, expr clause.Expression) *gorm.DB {
	if expr == nil {
		return db
	}
	return db.Where(expr)
}
