// Package predicate lowers filters into in-memory predicates over structs and
// maps.
package predicate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/nlstn/go-filters/internal/ast"
	"github.com/nlstn/go-filters/internal/evaluator"
	"github.com/nlstn/go-filters/internal/filtererrors"
)

// TargetName identifies the in-memory target in spans and metrics.
const TargetName = "predicate"

// Expr is a lowered expression evaluated against one record. Logical and
// comparison expressions yield a bool; field reads and constants yield the
// raw value.
type Expr func(record any) (any, error)

// Predicate is a compiled filter over records of type R.
type Predicate[R any] func(record R) (bool, error)

// Target reads fields by reflection and captures constants.
type Target struct{}

// Field returns an expression reading name from the record.
func (Target) Field(name string) (Expr, error) {
	return func(record any) (any, error) {
		return ReadField(record, name)
	}, nil
}

// Constant returns an expression yielding value.
func (Target) Constant(value any) (Expr, error) {
	return func(any) (any, error) {
		return value, nil
	}, nil
}

// New returns an evaluator with the built-in strategies registered.
func New(opts ...evaluator.Option) *evaluator.Evaluator[Expr] {
	e := evaluator.New[Expr](TargetName, Target{}, opts...)
	RegisterDefaults(e)
	return e
}

// RegisterDefaults registers the built-in logical, ordering and substring
// strategies on e.
func RegisterDefaults(e *evaluator.Evaluator[Expr]) {
	e.RegisterBinary(ast.KindAnd, and)
	e.RegisterBinary(ast.KindOr, or)
	e.RegisterUnary(ast.KindNot, not)

	e.RegisterBinary(ast.KindEqual, ValueTest(ast.KindEqual, func(field, value any) (bool, error) {
		return Equal(field, value), nil
	}))
	e.RegisterBinary(ast.KindGreaterThan, ordering(ast.KindGreaterThan, func(c int) bool { return c > 0 }))
	e.RegisterBinary(ast.KindGreaterThanOrEqual, ordering(ast.KindGreaterThanOrEqual, func(c int) bool { return c >= 0 }))
	e.RegisterBinary(ast.KindLessThan, ordering(ast.KindLessThan, func(c int) bool { return c < 0 }))
	e.RegisterBinary(ast.KindLessThanOrEqual, ordering(ast.KindLessThanOrEqual, func(c int) bool { return c <= 0 }))

	e.RegisterBinary(ast.KindContains, substring(ast.KindContains, strings.Contains))
	e.RegisterBinary(ast.KindStartsWith, substring(ast.KindStartsWith, strings.HasPrefix))
	e.RegisterBinary(ast.KindEndsWith, substring(ast.KindEndsWith, strings.HasSuffix))
}

// ValueTest builds a comparison strategy from a test over the field value and
// the constant. Errors from test are reported against kind.
func ValueTest(kind ast.Kind, test func(field, value any) (bool, error)) evaluator.BinaryFunc[Expr] {
	return func(access, constant Expr) (Expr, error) {
		return func(record any) (any, error) {
			field, err := access(record)
			if err != nil {
				return nil, err
			}
			value, err := constant(record)
			if err != nil {
				return nil, err
			}
			ok, err := test(field, value)
			if err != nil {
				return nil, withOperation(err, kind)
			}
			return ok, nil
		}, nil
	}
}

// StringTest builds a comparison strategy from a test over two strings. A nil
// field never matches.
func StringTest(kind ast.Kind, test func(field, value string) bool) evaluator.BinaryFunc[Expr] {
	return substring(kind, test)
}

// Compile turns a lowered expression into a typed predicate.
func Compile[R any](expr Expr) Predicate[R] {
	return func(record R) (bool, error) {
		return Match(expr, record)
	}
}

// Match evaluates expr against record. The expression must yield a bool.
func Match(expr Expr, record any) (bool, error) {
	v, err := expr(record)
	if err != nil {
		return false, err
	}
	return truth(v, "")
}

// Filter returns the records matching pred, in their original order. It
// stops at the first evaluation error.
func Filter[R any](records []R, pred Predicate[R]) ([]R, error) {
	out := make([]R, 0, len(records))
	for _, r := range records {
		ok, err := pred(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// and evaluates right only when left holds.
func and(left, right Expr) (Expr, error) {
	return func(record any) (any, error) {
		l, err := evalBool(left, record, ast.KindAnd)
		if err != nil || !l {
			return false, err
		}
		return evalBool(right, record, ast.KindAnd)
	}, nil
}

// or always evaluates both sides.
func or(left, right Expr) (Expr, error) {
	return func(record any) (any, error) {
		l, err := evalBool(left, record, ast.KindOr)
		if err != nil {
			return nil, err
		}
		r, err := evalBool(right, record, ast.KindOr)
		if err != nil {
			return nil, err
		}
		return l || r, nil
	}, nil
}

func not(operand Expr) (Expr, error) {
	return func(record any) (any, error) {
		v, err := evalBool(operand, record, ast.KindNot)
		if err != nil {
			return nil, err
		}
		return !v, nil
	}, nil
}

// ordering compares field and constant; a nil on either side never matches.
func ordering(kind ast.Kind, accept func(int) bool) evaluator.BinaryFunc[Expr] {
	return ValueTest(kind, func(field, value any) (bool, error) {
		if field == nil || value == nil {
			return false, nil
		}
		c, err := Compare(field, value)
		if err != nil {
			return false, err
		}
		return accept(c), nil
	})
}

func substring(kind ast.Kind, test func(s, sub string) bool) evaluator.BinaryFunc[Expr] {
	return ValueTest(kind, func(field, value any) (bool, error) {
		if field == nil || value == nil {
			return false, nil
		}
		s, ok := asString(field)
		if !ok {
			return false, notComparable(field, value)
		}
		sub, ok := asString(value)
		if !ok {
			return false, notComparable(field, value)
		}
		return test(s, sub), nil
	})
}

func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func evalBool(expr Expr, record any, kind ast.Kind) (bool, error) {
	v, err := expr(record)
	if err != nil {
		return false, err
	}
	return truth(v, kind)
}

func truth(v any, kind ast.Kind) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, filtererrors.EvaluationCause(filtererrors.ErrUnsupportedOperation, string(kind),
			fmt.Errorf("expression yields %T, not bool", v))
	}
	return b, nil
}

// withOperation names kind on evaluation errors that do not carry one yet.
func withOperation(err error, kind ast.Kind) error {
	if evalErr, ok := err.(*filtererrors.EvaluationError); ok && evalErr.Operation == "" {
		return &filtererrors.EvaluationError{Err: evalErr.Err, Operation: string(kind), Cause: evalErr.Cause}
	}
	if filtererrors.IsEvaluation(err) {
		return err
	}
	return filtererrors.EvaluationCause(filtererrors.ErrUnsupportedOperation, string(kind), err)
}
