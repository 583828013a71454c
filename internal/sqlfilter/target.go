package sqlfilter

import (
	"strings"

	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Column reads one column. It is built quoted, table-qualified when a table
// is set.
type Column struct {
	clause.Column
}

// Build implements clause.Expression.
func (c Column) Build(builder clause.Builder) {
	builder.WriteQuoted(c.Column)
}

// Constant is a bound parameter. A nil value renders as NULL.
type Constant struct {
	Value any
}

// Build implements clause.Expression.
func (c Constant) Build(builder clause.Builder) {
	if c.Value == nil {
		builder.WriteString("NULL")
		return
	}
	builder.AddVar(builder, c.Value)
}

// IsNull reports whether expr is a NULL constant.
func IsNull(expr clause.Expression) bool {
	c, ok := expr.(Constant)
	return ok && c.Value == nil
}

// Option configures a Target.
type Option func(*Target)

// WithNamer derives column names with namer instead of the default GORM
// naming strategy.
func WithNamer(namer schema.Namer) Option {
	return func(t *Target) {
		if namer != nil {
			t.namer = namer
		}
	}
}

// WithColumn maps field (case-insensitive) to a fixed column name.
func WithColumn(field, column string) Option {
	return func(t *Target) {
		t.columns[strings.ToLower(field)] = column
	}
}

// WithTable qualifies every column with table.
func WithTable(table string) Option {
	return func(t *Target) {
		t.table = table
	}
}

// Target maps fields to quoted columns and values to bound parameters.
type Target struct {
	namer   schema.Namer
	columns map[string]string
	table   string
}

// NewTarget creates a target. Without options, columns follow
// schema.NamingStrategy{}: "IsOutOfStock" reads "is_out_of_stock".
func NewTarget(opts ...Option) *Target {
	t := &Target{
		namer:   schema.NamingStrategy{},
		columns: make(map[string]string),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ColumnName returns the column field is read from.
func (t *Target) ColumnName(field string) string {
	if column, ok := t.columns[strings.ToLower(field)]; ok {
		return column
	}
	return t.namer.ColumnName(t.table, field)
}

// Field implements evaluator.Target.
func (t *Target) Field(name string) (clause.Expression, error) {
	return Column{clause.Column{Table: t.table, Name: t.ColumnName(name)}}, nil
}

// Constant implements evaluator.Target.
func (t *Target) Constant(value any) (clause.Expression, error) {
	return Constant{Value: value}, nil
}
