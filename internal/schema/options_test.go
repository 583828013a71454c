package schema

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-filters/internal/ast"
	"github.com/nlstn/go-filters/internal/filtererrors"
)

func newOptions(t *testing.T, fields ...Field) *Options {
	t.Helper()
	if len(fields) == 0 {
		fields = []Field{NewField[string]("Name")}
	}
	o, err := New(fields...)
	require.NoError(t, err)
	return o
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		fields   []Field
		sentinel error
	}{
		{"no fields", nil, filtererrors.ErrNoFields},
		{"empty name", []Field{NewField[string]("  ")}, filtererrors.ErrInvalidField},
		{"missing type", []Field{{Name: "Name"}}, filtererrors.ErrInvalidField},
		{"empty alias", []Field{NewField[string]("Name", "")}, filtererrors.ErrInvalidField},
		{"duplicate name", []Field{NewField[string]("Name"), NewField[int]("NAME")}, filtererrors.ErrDuplicateField},
		{"alias clashes with name", []Field{NewField[string]("Name"), NewField[int]("Id", "name")}, filtererrors.ErrDuplicateField},
		{"alias repeats own name", []Field{NewField[string]("Name", "Name")}, filtererrors.ErrDuplicateField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := New(tt.fields...)
			require.Error(t, err)
			assert.Nil(t, o)
			assert.True(t, filtererrors.IsSchema(err))
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}

func TestField(t *testing.T) {
	o := newOptions(t,
		NewField[string]("Name"),
		NewField[decimal.Decimal]("Price", "cost", "Amount"),
	)

	for _, name := range []string{"price", "PRICE", "Cost", "COST", "amount"} {
		f, ok := o.Field(name)
		require.True(t, ok, name)
		assert.Equal(t, "Price", f.Name)
		assert.Equal(t, reflect.TypeFor[decimal.Decimal](), f.Type)
	}

	_, ok := o.Field("Unknown")
	assert.False(t, ok)

	fields := o.Fields()
	require.Len(t, fields, 2)
	fields[1].Aliases[0] = "mutated"
	f, _ := o.Field("cost")
	assert.Equal(t, []string{"cost", "Amount"}, f.Aliases, "Fields must return copies")
}

func TestAddField(t *testing.T) {
	o := newOptions(t)
	require.NoError(t, o.AddField(NewField[int]("Id")))
	_, ok := o.Field("id")
	assert.True(t, ok)

	err := o.AddField(NewField[int]("ID"))
	assert.True(t, errors.Is(err, filtererrors.ErrDuplicateField))
}

func TestOperationRegistration(t *testing.T) {
	o := newOptions(t)

	assert.Equal(t, []string{"AND", "OR"}, o.BinaryKeywords())
	assert.Equal(t, []string{"NOT"}, o.UnaryKeywords())
	assert.Equal(t, []string{"CONTAINS", "CT", "END", "EQ", "GT", "GTE", "LT", "LTE", "START"}, o.ComparisonKeywords())

	like := ast.NewComparison("LIKE", ast.RequireString)
	require.NoError(t, o.AddComparison(" like ", like))
	_, ok := o.Comparison("Like")
	assert.True(t, ok)

	// last registration wins across tables
	require.NoError(t, o.AddBinary("like", ast.NewBinary("LIKE")))
	_, ok = o.Comparison("LIKE")
	assert.False(t, ok)
	_, ok = o.Binary("LIKE")
	assert.True(t, ok)

	err := o.AddUnary("", ast.Not)
	assert.True(t, errors.Is(err, filtererrors.ErrInvalidKeyword))
	err = o.AddUnary("TWO WORDS", ast.Not)
	assert.True(t, errors.Is(err, filtererrors.ErrInvalidKeyword))
	err = o.AddBinary("XOR", nil)
	assert.True(t, errors.Is(err, filtererrors.ErrNilConstructor))
	assert.True(t, filtererrors.IsSchema(err))
}

func TestClearOperations(t *testing.T) {
	o := newOptions(t)
	require.NoError(t, o.AddBinary("CUSTOM_AND", ast.And))

	o.ClearOperations()

	assert.False(t, o.HasKeyword("CUSTOM_AND"))
	assert.False(t, o.HasKeyword("EQ"))
	assert.Empty(t, o.BinaryKeywords())
	assert.Len(t, o.Fields(), 1, "fields survive ClearOperations")
	assert.True(t, o.HasConverter(reflect.TypeFor[string]()))
}

func TestSentinels(t *testing.T) {
	o := newOptions(t)

	err := o.WithNullValue("")
	assert.True(t, errors.Is(err, filtererrors.ErrInvalidSentinel))
	err = o.WithEmptyValue("")
	assert.True(t, errors.Is(err, filtererrors.ErrInvalidSentinel))

	require.NoError(t, o.WithNullValue("NULL_VALUE"))
	require.NoError(t, o.WithEmptyValue("EMPTY"))

	v, err := o.Convert("NULL_VALUE", reflect.TypeFor[string]())
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = o.Convert("NULL_VALUE", reflect.TypeFor[int]())
	require.NoError(t, err)
	assert.Nil(t, v, "null sentinel applies before any converter")

	v, err = o.Convert("EMPTY", reflect.TypeFor[string]())
	require.NoError(t, err)
	assert.Equal(t, "", v)

	null, ok := o.NullValue()
	assert.True(t, ok)
	assert.Equal(t, "NULL_VALUE", null)
}

func TestConvert(t *testing.T) {
	o := newOptions(t)
	id := uuid.MustParse("0b0c4a63-3c43-4b5a-8bb1-6f0d4f8d7b1e")

	tests := []struct {
		name     string
		raw      string
		typ      reflect.Type
		expected any
	}{
		{"string", "Vincent", reflect.TypeFor[string](), "Vincent"},
		{"char", "é", reflect.TypeFor[Char](), Char('é')},
		{"int", "-42", reflect.TypeFor[int](), -42},
		{"int32", "7", reflect.TypeFor[int32](), int32(7)},
		{"int64", "9000000000", reflect.TypeFor[int64](), int64(9000000000)},
		{"uint", "3", reflect.TypeFor[uint](), uint(3)},
		{"uint64", "18446744073709551615", reflect.TypeFor[uint64](), uint64(18446744073709551615)},
		{"float32", "1.5", reflect.TypeFor[float32](), float32(1.5)},
		{"float64", "149.99", reflect.TypeFor[float64](), 149.99},
		{"bool true", "TRUE", reflect.TypeFor[bool](), true},
		{"bool one", "1", reflect.TypeFor[bool](), true},
		{"bool false", "False", reflect.TypeFor[bool](), false},
		{"bool zero", "0", reflect.TypeFor[bool](), false},
		{"date", "2022-11-12", reflect.TypeFor[Date](), Date{2022, time.November, 12}},
		{"time of day", "13:45:10", reflect.TypeFor[TimeOfDay](), TimeOfDay{Hour: 13, Minute: 45, Second: 10}},
		{"time of day short", "08:30", reflect.TypeFor[TimeOfDay](), TimeOfDay{Hour: 8, Minute: 30}},
		{"duration go", "1h30m", reflect.TypeFor[time.Duration](), 90 * time.Minute},
		{"duration clock", "01:30:00", reflect.TypeFor[time.Duration](), 90 * time.Minute},
		{"duration negative clock", "-00:00:01.5", reflect.TypeFor[time.Duration](), -1500 * time.Millisecond},
		{"uuid", id.String(), reflect.TypeFor[uuid.UUID](), id},
		{"pointer uses element converter", "5", reflect.TypeFor[*int](), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := o.Convert(tt.raw, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestConvertDecimalAndTime(t *testing.T) {
	o := newOptions(t)

	v, err := o.Convert("149.99", reflect.TypeFor[decimal.Decimal]())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("149.99").Equal(v.(decimal.Decimal)))

	for _, raw := range []string{"2022-11-12", "2022-11-12 00:00:00", "2022-11-12T00:00:00", "2022-11-12T00:00:00Z"} {
		v, err := o.Convert(raw, reflect.TypeFor[time.Time]())
		require.NoError(t, err, raw)
		assert.True(t, time.Date(2022, 11, 12, 0, 0, 0, 0, time.UTC).Equal(v.(time.Time)), raw)
	}

	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("time zone database unavailable: %v", err)
	}
	o.WithLocation(paris)
	v, err = o.Convert("2022-11-12", reflect.TypeFor[time.Time]())
	require.NoError(t, err)
	assert.Equal(t, paris, v.(time.Time).Location())
	assert.True(t, time.Date(2022, 11, 11, 23, 0, 0, 0, time.UTC).Equal(v.(time.Time)))
}

func TestConvertErrors(t *testing.T) {
	o := newOptions(t)

	tests := []struct {
		name     string
		raw      string
		typ      reflect.Type
		sentinel error
	}{
		{"not an int", "abc", reflect.TypeFor[int](), filtererrors.ErrInvalidValue},
		{"int32 overflow", "3000000000", reflect.TypeFor[int32](), filtererrors.ErrInvalidValue},
		{"not a bool", "yes", reflect.TypeFor[bool](), filtererrors.ErrInvalidValue},
		{"not a decimal", "Hello", reflect.TypeFor[decimal.Decimal](), filtererrors.ErrInvalidValue},
		{"two characters", "ab", reflect.TypeFor[Char](), filtererrors.ErrInvalidValue},
		{"bad clock duration", "1:99:00", reflect.TypeFor[time.Duration](), filtererrors.ErrInvalidValue},
		{"bad date", "2022-13-01", reflect.TypeFor[Date](), filtererrors.ErrInvalidValue},
		{"no converter", "x", reflect.TypeFor[complex128](), filtererrors.ErrNoConverter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := o.Convert(tt.raw, tt.typ)
			require.Error(t, err)
			assert.Nil(t, v)
			assert.True(t, filtererrors.IsFormat(err))
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}

type money struct {
	cents int64
}

func TestAddConverter(t *testing.T) {
	o := newOptions(t, NewField[money]("Total"))

	err := AddConverter[money](o, nil)
	assert.True(t, errors.Is(err, filtererrors.ErrNilConverter))

	require.NoError(t, AddConverter(o, func(raw string) (money, error) {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return money{}, err
		}
		return money{cents: d.Shift(2).IntPart()}, nil
	}))

	v, err := o.Convert("12.34", reflect.TypeFor[money]())
	require.NoError(t, err)
	assert.Equal(t, money{cents: 1234}, v)

	// overwriting a default converter
	require.NoError(t, AddConverter(o, func(raw string) (string, error) { return "x" + raw, nil }))
	v, err = o.Convert("y", reflect.TypeFor[string]())
	require.NoError(t, err)
	assert.Equal(t, "xy", v)
}
