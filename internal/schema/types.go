package schema

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Char is a single character. It is a distinct type from int32 so that the
// two get separate converters.
type Char rune

// String returns the character as a one-rune string
func (c Char) String() string {
	return string(rune(c))
}

// Value implements driver.Valuer so a Char binds as text
func (c Char) Value() (driver.Value, error) {
	return c.String(), nil
}

// Date is a calendar date without a time of day or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// DateOf returns the date part of t in t's location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a date in yyyy-mm-dd form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// String returns the yyyy-mm-dd literal
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// Value implements driver.Valuer
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

var timeOfDayLayouts = []string{"15:04:05.999999999", "15:04"}

// TimeOfDayOf returns the clock part of t
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nanosecond: t.Nanosecond()}
}

// ParseTimeOfDay parses hh:mm:ss with optional fractional seconds, or hh:mm.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var firstErr error
	for _, layout := range timeOfDayLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return TimeOfDayOf(t), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return TimeOfDay{}, firstErr
}

func (t TimeOfDay) String() string {
	return time.Date(0, 1, 1, t.Hour, t.Minute, t.Second, t.Nanosecond, time.UTC).Format(timeOfDayLayouts[0])
}

// Since returns the duration elapsed since midnight
func (t TimeOfDay) Since() time.Duration {
	return time.Duration(t.Hour)*time.Hour +
		time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second +
		time.Duration(t.Nanosecond)
}

// Compare returns -1, 0 or +1 depending on whether t is before, equal to or
// after other.
func (t TimeOfDay) Compare(other TimeOfDay) int {
	return cmpInt(int(t.Since()), int(other.Since()))
}

// Value implements driver.Valuer
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
