package ast

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Walk visits op and its descendants in prefix order. Returning false from
// fn skips the children of the current node.
func Walk(op Operation, fn func(Operation) bool) {
	if op == nil || !fn(op) {
		return
	}
	switch n := op.(type) {
	case *Binary:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Unary:
		Walk(n.Operand, fn)
	}
}

// Fields returns the distinct field names referenced by op, in order of first
// appearance.
func Fields(op Operation) []string {
	var names []string
	seen := make(map[string]bool)
	Walk(op, func(node Operation) bool {
		if c, ok := node.(*FieldComparison); ok && !seen[c.Field] {
			seen[c.Field] = true
			names = append(names, c.Field)
		}
		return true
	})
	return names
}

// Depth returns the nesting depth of op; a single comparison has depth 1.
func Depth(op Operation) int {
	switch n := op.(type) {
	case *Binary:
		return 1 + max(Depth(n.Left), Depth(n.Right))
	case *Unary:
		return 1 + Depth(n.Operand)
	case nil:
		return 0
	default:
		return 1
	}
}

// Equal reports whether two trees are structurally equal. Values that expose
// an Equal method (time.Time, decimal.Decimal) are compared with it.
func Equal(a, b Operation) bool {
	switch x := a.(type) {
	case *Binary:
		y, ok := b.(*Binary)
		return ok && x.Kind == y.Kind && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Unary:
		y, ok := b.(*Unary)
		return ok && x.Kind == y.Kind && Equal(x.Operand, y.Operand)
	case *FieldComparison:
		y, ok := b.(*FieldComparison)
		return ok && x.Kind == y.Kind && x.Field == y.Field && valuesEqual(x.Value, y.Value)
	case nil:
		return b == nil
	default:
		return reflect.DeepEqual(a, b)
	}
}

func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if m := va.MethodByName("Equal"); m.IsValid() {
		mt := m.Type()
		if mt.NumIn() == 1 && mt.In(0) == vb.Type() && mt.NumOut() == 1 && mt.Out(0).Kind() == reflect.Bool {
			return m.Call([]reflect.Value{vb})[0].Bool()
		}
	}
	return reflect.DeepEqual(a, b)
}

// Format renders op back into prefix notation. Literal values are quoted when
// they would not survive tokenization as a single bare word. A nil value
// renders as the bare word null, so the output parses back to the same tree
// only when null is the registry's null sentinel and no string value is
// literally "null".
func Format(op Operation) string {
	var sb strings.Builder
	format(&sb, op)
	return sb.String()
}

func format(sb *strings.Builder, op Operation) {
	switch n := op.(type) {
	case *Binary:
		sb.WriteString(string(n.Kind))
		sb.WriteByte(' ')
		format(sb, n.Left)
		sb.WriteByte(' ')
		format(sb, n.Right)
	case *Unary:
		sb.WriteString(string(n.Kind))
		sb.WriteByte(' ')
		format(sb, n.Operand)
	case *FieldComparison:
		sb.WriteString(string(n.Kind))
		sb.WriteByte(' ')
		sb.WriteString(quote(n.Field))
		sb.WriteByte(' ')
		sb.WriteString(quote(formatValue(n.Value)))
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, "' \t\r\n") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
