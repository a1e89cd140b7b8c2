// Package schedule holds the calendar value types shared by the availability,
// booking, block and monthly pass engines.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// LocalDate is a calendar date with no time zone. It is never an instant:
// combine it with a TimeOfDay and a location to get one.
type LocalDate struct {
	year  int
	month time.Month
	day   int
}

// NewLocalDate normalizes out-of-range values the same way time.Date does.
func NewLocalDate(year int, month time.Month, day int) LocalDate {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return LocalDate{year: t.Year(), month: t.Month(), day: t.Day()}
}

func ParseLocalDate(raw string) (LocalDate, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return LocalDate{}, fmt.Errorf("date is required")
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return LocalDate{}, fmt.Errorf("date must be formatted as YYYY-MM-DD")
	}
	return LocalDate{year: t.Year(), month: t.Month(), day: t.Day()}, nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) LocalDate {
	return LocalDate{year: t.Year(), month: t.Month(), day: t.Day()}
}

func (d LocalDate) Year() int         { return d.year }
func (d LocalDate) Month() time.Month { return d.month }
func (d LocalDate) Day() int          { return d.day }
func (d LocalDate) IsZero() bool      { return d.year == 0 && d.month == 0 && d.day == 0 }

func (d LocalDate) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

func (d LocalDate) utcMidnight() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func (d LocalDate) Weekday() time.Weekday {
	return d.utcMidnight().Weekday()
}

func (d LocalDate) AddDays(n int) LocalDate {
	return NewLocalDate(d.year, d.month, d.day+n)
}

// DaysUntil returns the number of days from d to other; negative when other is earlier.
func (d LocalDate) DaysUntil(other LocalDate) int {
	return int(other.utcMidnight().Sub(d.utcMidnight()).Hours() / 24)
}

func (d LocalDate) Compare(other LocalDate) int {
	switch {
	case d.year != other.year:
		return compareInts(d.year, other.year)
	case d.month != other.month:
		return compareInts(int(d.month), int(other.month))
	default:
		return compareInts(d.day, other.day)
	}
}

func (d LocalDate) Before(other LocalDate) bool { return d.Compare(other) < 0 }
func (d LocalDate) After(other LocalDate) bool  { return d.Compare(other) > 0 }

// At returns the instant at which the wall clock in loc reads tod on d.
// A TimeOfDay of 24:00 resolves to midnight of the following day.
func (d LocalDate) At(tod TimeOfDay, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.year, d.month, d.day, 0, tod.Minutes(), 0, 0, loc)
}

// YearMonth returns the calendar month containing d.
func (d LocalDate) YearMonth() Month {
	return Month{year: d.year, month: d.month}
}

func (d LocalDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *LocalDate) UnmarshalText(text []byte) error {
	parsed, err := ParseLocalDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
