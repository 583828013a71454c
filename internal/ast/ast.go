package ast

// Kind identifies an operation by its upper-case keyword (e.g. "AND", "EQ").
type Kind string

// Built-in operation kinds.
const (
	KindAnd Kind = "AND"
	KindOr  Kind = "OR"
	KindNot Kind = "NOT"

	KindEqual              Kind = "EQ"
	KindGreaterThan        Kind = "GT"
	KindGreaterThanOrEqual Kind = "GTE"
	KindLessThan           Kind = "LT"
	KindLessThanOrEqual    Kind = "LTE"
	KindContains           Kind = "CONTAINS"
	KindStartsWith         Kind = "START"
	KindEndsWith           Kind = "END"
)

// Operation is a node of the operation tree. The set of node shapes is closed:
// *Binary, *Unary and *FieldComparison.
type Operation interface {
	// OperationKind returns the keyword the node was built from.
	OperationKind() Kind
	operation()
}

// Binary is a logical operation over two sub-trees (e.g. AND, OR).
type Binary struct {
	Kind  Kind
	Left  Operation
	Right Operation
}

func (b *Binary) OperationKind() Kind { return b.Kind }
func (b *Binary) operation()          {}

// Unary is a logical operation over one sub-tree (e.g. NOT).
type Unary struct {
	Kind    Kind
	Operand Operation
}

func (u *Unary) OperationKind() Kind { return u.Kind }
func (u *Unary) operation()          {}

// FieldComparison compares one declared field against a converted literal.
// Field holds the canonical field name, never an alias.
type FieldComparison struct {
	Kind  Kind
	Field string
	Value any
}

func (c *FieldComparison) OperationKind() Kind { return c.Kind }
func (c *FieldComparison) operation()          {}

// Filter is the result of parsing one query.
type Filter struct {
	// Source is the query text the filter was parsed from.
	Source string
	Root   Operation
}

// String returns the source text.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.Source
}
