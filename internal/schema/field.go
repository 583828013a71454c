package schema

import (
	"reflect"
	"slices"
	"strings"
)

// Field declares one filterable property: its canonical name, the Go type
// query values are converted to, and any alternative names.
type Field struct {
	Name    string
	Type    reflect.Type
	Aliases []string
}

// NewField declares a field whose values are converted to T.
func NewField[T any](name string, aliases ...string) Field {
	return Field{Name: name, Type: reflect.TypeFor[T](), Aliases: aliases}
}

// Matches reports whether name refers to the field, ignoring case.
func (f Field) Matches(name string) bool {
	if strings.EqualFold(f.Name, name) {
		return true
	}
	for _, alias := range f.Aliases {
		if strings.EqualFold(alias, name) {
			return true
		}
	}
	return false
}

// names returns the canonical name followed by the aliases
func (f Field) names() []string {
	return append([]string{f.Name}, f.Aliases...)
}

func (f Field) clone() Field {
	f.Aliases = slices.Clone(f.Aliases)
	return f
}
