package predicate

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/nlstn/go-filters/internal/filtererrors"
)

// fieldKey identifies one field lookup on one struct type.
type fieldKey struct {
	typ  reflect.Type
	name string
}

// globalFieldCache maps fieldKey to the field's index path, or nil when the
// type has no readable field of that name. Entries are written once and read
// many times.
var globalFieldCache sync.Map // map[fieldKey][]int

// fieldIndex resolves name on struct type t: an exact exported field first,
// then the first exported field whose name matches case-insensitively.
// Embedded structs are not fields themselves; their promoted fields are.
func fieldIndex(t reflect.Type, name string) []int {
	key := fieldKey{typ: t, name: name}
	if cached, ok := globalFieldCache.Load(key); ok {
		return cached.([]int) //nolint:errcheck // type is guaranteed by our Store calls
	}

	var index []int
	if f, ok := t.FieldByName(name); ok && f.IsExported() && !f.Anonymous {
		index = f.Index
	} else {
		for _, f := range reflect.VisibleFields(t) {
			if f.IsExported() && !f.Anonymous && strings.EqualFold(f.Name, name) {
				index = f.Index
				break
			}
		}
	}

	actual, _ := globalFieldCache.LoadOrStore(key, index)
	return actual.([]int) //nolint:errcheck // type is guaranteed by our Store calls
}

// ReadField reads the named field from record. Records may be structs, maps
// with string keys, or pointers to either. Pointer fields are dereferenced and
// a nil pointer reads as nil. A map key matching name exactly wins; otherwise
// the smallest key that matches case-insensitively is read.
func ReadField(record any, name string) (any, error) {
	v := reflect.ValueOf(record)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, unknownField(name, record)
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		index := fieldIndex(v.Type(), name)
		if index == nil {
			return nil, unknownField(name, record)
		}
		fv, err := v.FieldByIndexErr(index)
		if err != nil {
			// nil embedded pointer on the path
			return nil, nil
		}
		return indirect(fv), nil

	case reflect.Map:
		if m, ok := record.(map[string]any); ok {
			return readMap(m, name, record)
		}
		if v.Type().Key().Kind() != reflect.String {
			return nil, unknownField(name, record)
		}
		keyType := v.Type().Key()
		if mv := v.MapIndex(reflect.ValueOf(name).Convert(keyType)); mv.IsValid() {
			return indirect(mv), nil
		}
		var (
			best  string
			found reflect.Value
		)
		iter := v.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			if strings.EqualFold(k, name) && (!found.IsValid() || k < best) {
				best, found = k, iter.Value()
			}
		}
		if !found.IsValid() {
			return nil, unknownField(name, record)
		}
		return indirect(found), nil
	}

	return nil, unknownField(name, record)
}

func readMap(m map[string]any, name string, record any) (any, error) {
	if value, ok := m[name]; ok {
		return indirect(reflect.ValueOf(value)), nil
	}
	var (
		best  string
		found bool
		value any
	)
	for k, v := range m {
		if strings.EqualFold(k, name) && (!found || k < best) {
			best, found, value = k, true, v
		}
	}
	if !found {
		return nil, unknownField(name, record)
	}
	return indirect(reflect.ValueOf(value)), nil
}

// indirect unwraps pointers and interfaces; nil reads as nil.
func indirect(v reflect.Value) any {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

func unknownField(name string, record any) error {
	return filtererrors.EvaluationCause(filtererrors.ErrUnknownField, name,
		fmt.Errorf("record of type %T", record))
}
