package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nlstn/go-filters/internal/filtererrors"
)

// Converter turns a raw query token into a value of the field's type.
type Converter func(raw string) (any, error)

// dateTimeLayouts are tried in order by the time.Time converter
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateLayout,
}

var errClockDuration = errors.New("expected hh:mm:ss")

// AddConverter registers fn as the converter for values of type T, replacing
// any previous converter for exactly that type.
func AddConverter[T any](o *Options, fn func(raw string) (T, error)) error {
	if fn == nil {
		return filtererrors.Schema(filtererrors.ErrNilConverter, reflect.TypeFor[T]().String())
	}
	return o.RegisterConverter(reflect.TypeFor[T](), typed(fn))
}

func typed[T any](fn func(string) (T, error)) Converter {
	return func(raw string) (any, error) {
		v, err := fn(raw)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// defaultConverters returns the converters every registry starts with. The
// string and date/time converters read the sentinel and location from o at
// conversion time, so later WithEmptyValue/WithLocation calls take effect.
func defaultConverters(o *Options) map[reflect.Type]Converter {
	return map[reflect.Type]Converter{
		reflect.TypeFor[string](): func(raw string) (any, error) {
			if o.emptyValue != "" && raw == o.emptyValue {
				return "", nil
			}
			return raw, nil
		},
		reflect.TypeFor[Char](): typed(parseChar),
		reflect.TypeFor[int]():  typed(strconv.Atoi),
		reflect.TypeFor[int32](): typed(func(raw string) (int32, error) {
			v, err := strconv.ParseInt(raw, 10, 32)
			return int32(v), err
		}),
		reflect.TypeFor[int64](): typed(func(raw string) (int64, error) {
			return strconv.ParseInt(raw, 10, 64)
		}),
		reflect.TypeFor[uint](): typed(func(raw string) (uint, error) {
			v, err := strconv.ParseUint(raw, 10, 0)
			return uint(v), err
		}),
		reflect.TypeFor[uint64](): typed(func(raw string) (uint64, error) {
			return strconv.ParseUint(raw, 10, 64)
		}),
		reflect.TypeFor[float32](): typed(func(raw string) (float32, error) {
			v, err := strconv.ParseFloat(raw, 32)
			return float32(v), err
		}),
		reflect.TypeFor[float64](): typed(func(raw string) (float64, error) {
			return strconv.ParseFloat(raw, 64)
		}),
		reflect.TypeFor[decimal.Decimal](): typed(decimal.NewFromString),
		reflect.TypeFor[time.Time](): typed(func(raw string) (time.Time, error) {
			return parseDateTime(raw, o.location)
		}),
		reflect.TypeFor[Date]():          typed(ParseDate),
		reflect.TypeFor[TimeOfDay]():     typed(ParseTimeOfDay),
		reflect.TypeFor[time.Duration](): typed(parseDuration),
		reflect.TypeFor[bool]():          typed(parseBool),
		reflect.TypeFor[uuid.UUID]():     typed(uuid.Parse),
	}
}

func parseChar(raw string) (Char, error) {
	if utf8.RuneCountInString(raw) != 1 {
		return 0, fmt.Errorf("expected a single character, got %d", utf8.RuneCountInString(raw))
	}
	r, _ := utf8.DecodeRuneInString(raw)
	return Char(r), nil
}

func parseDateTime(raw string, loc *time.Location) (time.Time, error) {
	var firstErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// parseDuration accepts Go duration syntax ("1h30m") or a clock span
// ("01:30:00", optionally signed and with fractional seconds).
func parseDuration(raw string) (time.Duration, error) {
	if !strings.Contains(raw, ":") {
		return time.ParseDuration(raw)
	}

	neg := strings.HasPrefix(raw, "-")
	parts := strings.Split(strings.TrimPrefix(raw, "-"), ":")
	if len(parts) != 3 {
		return 0, errClockDuration
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, errClockDuration
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 || seconds >= 60 {
		return 0, errClockDuration
	}

	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second))
	if neg {
		d = -d
	}
	return d, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, filtererrors.Format(filtererrors.ErrInvalidValue,
			fmt.Sprintf("%q is not a boolean", raw))
	}
}
