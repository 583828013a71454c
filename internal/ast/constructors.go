package ast

import (
	"fmt"

	"github.com/nlstn/go-filters/internal/filtererrors"
)

// BinaryConstructor builds a binary node from its two operands.
type BinaryConstructor func(left, right Operation) Operation

// UnaryConstructor builds a unary node from its operand.
type UnaryConstructor func(operand Operation) Operation

// ComparisonConstructor builds a field comparison. It rejects values the
// operator cannot be applied to with a FormatError.
type ComparisonConstructor func(field string, value any) (Operation, error)

// ValueRule validates a comparison value for an operator.
type ValueRule func(kind Kind, value any) error

// AnyValue accepts every value, including nil.
func AnyValue(Kind, any) error {
	return nil
}

// RejectString refuses string values. Ordering operators use it.
func RejectString(kind Kind, value any) error {
	if _, ok := value.(string); ok {
		return filtererrors.Format(filtererrors.ErrIncompatibleOperator,
			fmt.Sprintf("%s value cannot be a string", kind))
	}
	return nil
}

// RequireString only accepts string values. A nil value is not a string.
// Substring operators use it.
func RequireString(kind Kind, value any) error {
	if _, ok := value.(string); !ok {
		return filtererrors.Format(filtererrors.ErrIncompatibleOperator,
			fmt.Sprintf("%s value must be a string, got %T", kind, value))
	}
	return nil
}

// NewBinary returns a constructor for binary nodes of the given kind.
func NewBinary(kind Kind) BinaryConstructor {
	return func(left, right Operation) Operation {
		return &Binary{Kind: kind, Left: left, Right: right}
	}
}

// NewUnary returns a constructor for unary nodes of the given kind.
func NewUnary(kind Kind) UnaryConstructor {
	return func(operand Operation) Operation {
		return &Unary{Kind: kind, Operand: operand}
	}
}

// NewComparison returns a constructor for field comparisons of the given kind
// that validates values with rule. A nil rule accepts every value.
func NewComparison(kind Kind, rule ValueRule) ComparisonConstructor {
	if rule == nil {
		rule = AnyValue
	}
	return func(field string, value any) (Operation, error) {
		if err := rule(kind, value); err != nil {
			return nil, err
		}
		return &FieldComparison{Kind: kind, Field: field, Value: value}, nil
	}
}

// Constructors for the built-in operations.
var (
	And = NewBinary(KindAnd)
	Or  = NewBinary(KindOr)
	Not = NewUnary(KindNot)

	Equals             = NewComparison(KindEqual, AnyValue)
	GreaterThan        = NewComparison(KindGreaterThan, RejectString)
	GreaterThanOrEqual = NewComparison(KindGreaterThanOrEqual, RejectString)
	LessThan           = NewComparison(KindLessThan, RejectString)
	LessThanOrEqual    = NewComparison(KindLessThanOrEqual, RejectString)
	Contains           = NewComparison(KindContains, RequireString)
	StartsWith         = NewComparison(KindStartsWith, RequireString)
	EndsWith           = NewComparison(KindEndsWith, RequireString)
)
