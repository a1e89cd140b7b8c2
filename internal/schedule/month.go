package schedule

import (
	"fmt"
	"strings"
	"time"
)

const monthLayout = "2006-01"

// Month is a calendar month in YYYY-MM form.
type Month struct {
	year  int
	month time.Month
}

func NewMonth(year int, month time.Month) Month {
	return NewLocalDate(year, month, 1).YearMonth()
}

func ParseMonth(raw string) (Month, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Month{}, fmt.Errorf("month is required")
	}
	t, err := time.Parse(monthLayout, raw)
	if err != nil {
		return Month{}, fmt.Errorf("month must be formatted as YYYY-MM")
	}
	return Month{year: t.Year(), month: t.Month()}, nil
}

func (m Month) Year() int         { return m.year }
func (m Month) Month() time.Month { return m.month }
func (m Month) IsZero() bool      { return m.year == 0 && m.month == 0 }

func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.year, m.month)
}

func (m Month) FirstDay() LocalDate {
	return NewLocalDate(m.year, m.month, 1)
}

func (m Month) LastDay() LocalDate {
	return NewLocalDate(m.year, m.month+1, 0)
}

func (m Month) Next() Month {
	return NewMonth(m.year, m.month+1)
}

func (m Month) Compare(other Month) int {
	if m.year != other.year {
		return compareInts(m.year, other.year)
	}
	return compareInts(int(m.month), int(other.month))
}

func (m Month) Before(other Month) bool { return m.Compare(other) < 0 }

func (m Month) Contains(d LocalDate) bool {
	return d.year == m.year && d.month == m.month
}

// Dates returns every date in the month falling on weekday, in order.
func (m Month) Dates(weekday time.Weekday) []LocalDate {
	first := m.FirstDay()
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	var dates []LocalDate
	for d := first.AddDays(offset); m.Contains(d); d = d.AddDays(7) {
		dates = append(dates, d)
	}
	return dates
}

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(text []byte) error {
	parsed, err := ParseMonth(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
