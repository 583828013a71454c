package predicate

import (
	"bytes"
	"cmp"
	"fmt"
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nlstn/go-filters/internal/filtererrors"
	"github.com/nlstn/go-filters/internal/schema"
)

var durationType = reflect.TypeFor[time.Duration]()

// Compare orders two non-nil values. Numbers compare across widths,
// signedness and decimal.Decimal; time.Time compares against schema.Date at
// midnight in the time's location. Values of any string kind compare by their
// text, so a named string type orders against a plain string. Other types must
// match exactly.
func Compare(a, b any) (int, error) {
	switch x := a.(type) {
	case time.Time:
		switch y := b.(type) {
		case time.Time:
			return x.Compare(y), nil
		case schema.Date:
			return x.Compare(y.In(x.Location())), nil
		}
	case schema.Date:
		switch y := b.(type) {
		case schema.Date:
			return x.Compare(y), nil
		case time.Time:
			return x.In(y.Location()).Compare(y), nil
		}
	case schema.TimeOfDay:
		if y, ok := b.(schema.TimeOfDay); ok {
			return x.Compare(y), nil
		}
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y), nil
		}
	case uuid.UUID:
		if y, ok := b.(uuid.UUID); ok {
			return bytes.Compare(x[:], y[:]), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			return compareBool(x, y), nil
		}
	case decimal.Decimal:
		if y, ok := toDecimal(b); ok {
			return x.Cmp(y), nil
		}
	}

	if y, ok := b.(decimal.Decimal); ok {
		if x, ok := toDecimal(a); ok {
			return x.Cmp(y), nil
		}
	}

	if c, ok := compareNumbers(reflect.ValueOf(a), reflect.ValueOf(b)); ok {
		return c, nil
	}

	// named string types
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == reflect.String && vb.Kind() == reflect.String {
		return cmp.Compare(va.String(), vb.String()), nil
	}

	return 0, notComparable(a, b)
}

// Equal reports whether a and b hold the same value. nil equals only nil.
// Values Compare cannot order fall back to reflect.DeepEqual.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if c, err := Compare(a, b); err == nil {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// compareNumbers orders two numeric values. Durations only compare with
// durations.
func compareNumbers(a, b reflect.Value) (int, bool) {
	if !isNumber(a) || !isNumber(b) {
		return 0, false
	}
	if (a.Type() == durationType) != (b.Type() == durationType) {
		return 0, false
	}

	switch {
	case isFloat(a) || isFloat(b):
		return cmp.Compare(toFloat(a), toFloat(b)), true
	case isSigned(a) && isSigned(b):
		return cmp.Compare(a.Int(), b.Int()), true
	case !isSigned(a) && !isSigned(b):
		return cmp.Compare(a.Uint(), b.Uint()), true
	case isSigned(a):
		if a.Int() < 0 {
			return -1, true
		}
		return cmp.Compare(uint64(a.Int()), b.Uint()), true
	default:
		if b.Int() < 0 {
			return 1, true
		}
		return cmp.Compare(a.Uint(), uint64(b.Int())), true
	}
}

func isNumber(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isSigned(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isFloat(v reflect.Value) bool {
	return v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isFloat(v):
		return v.Float()
	case isSigned(v):
		return float64(v.Int())
	default:
		return float64(v.Uint())
	}
}

// toDecimal converts plain numbers to decimal.Decimal. Floats go through
// their shortest decimal representation, so 149.99 stays 149.99.
func toDecimal(value any) (decimal.Decimal, bool) {
	if d, ok := value.(decimal.Decimal); ok {
		return d, true
	}
	v := reflect.ValueOf(value)
	if !isNumber(v) || v.Type() == durationType {
		return decimal.Decimal{}, false
	}
	switch {
	case v.Kind() == reflect.Float32:
		return decimal.NewFromFloat32(float32(v.Float())), true
	case isFloat(v):
		return decimal.NewFromFloat(v.Float()), true
	case isSigned(v):
		return decimal.NewFromInt(v.Int()), true
	default:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(v.Uint()), 0), true
	}
}

func notComparable(a, b any) error {
	return filtererrors.EvaluationCause(filtererrors.ErrNotComparable, "",
		fmt.Errorf("cannot compare %T with %T", a, b))
}
