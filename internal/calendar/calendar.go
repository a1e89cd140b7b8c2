// Package calendar resolves the effective opening hours of an establishment
// for a single date.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	dbgen "github.com/codr1/Courtbook/internal/db/generated"
	"github.com/codr1/Courtbook/internal/schedule"
)

type Hours struct {
	Opening schedule.TimeOfDay
	Closing schedule.TimeOfDay
}

// Rules are the recurring weekly hours of an establishment.
type Rules struct {
	OpenWeekdays map[time.Weekday]bool
	Default      Hours
	Overrides    map[time.Weekday]Hours
}

// HoursFor returns the regular hours for weekday, and false when the
// establishment does not normally open that day.
func (r Rules) HoursFor(weekday time.Weekday) (Hours, bool) {
	hours := r.hoursIgnoringClosure(weekday)
	return hours, r.OpenWeekdays[weekday]
}

func (r Rules) hoursIgnoringClosure(weekday time.Weekday) Hours {
	if override, ok := r.Overrides[weekday]; ok {
		return override
	}
	return r.Default
}

// Holiday is a per-date exception. A closed holiday closes the day even if the
// weekday is normally open; an open holiday opens it even if it is not.
type Holiday struct {
	Date    schedule.LocalDate
	IsOpen  bool
	Opening *schedule.TimeOfDay
	Closing *schedule.TimeOfDay
	Note    string
}

// Day is the resolved calendar for one date.
type Day struct {
	Date     schedule.LocalDate
	IsClosed bool
	Opening  schedule.TimeOfDay
	Closing  schedule.TimeOfDay
	Notice   string
}

// Resolve applies the holiday, if any, over the weekly rules.
func Resolve(rules Rules, date schedule.LocalDate, holiday *Holiday) Day {
	weekday := date.Weekday()
	day := Day{Date: date}

	if holiday != nil {
		note := strings.TrimSpace(holiday.Note)
		if !holiday.IsOpen {
			day.IsClosed = true
			day.Notice = "Closed on this date"
			if note != "" {
				day.Notice = "Closed: " + note
			}
			return day
		}

		hours := rules.hoursIgnoringClosure(weekday)
		if holiday.Opening != nil {
			hours.Opening = *holiday.Opening
		}
		if holiday.Closing != nil {
			hours.Closing = *holiday.Closing
		}
		day.Opening = hours.Opening
		day.Closing = hours.Closing
		day.Notice = "Special hours on this date"
		if note != "" {
			day.Notice = "Special hours: " + note
		}
		if !day.Closing.After(day.Opening) {
			day.IsClosed = true
		}
		return day
	}

	hours, open := rules.HoursFor(weekday)
	if !open {
		day.IsClosed = true
		day.Notice = fmt.Sprintf("Closed on %ss", weekday)
		return day
	}
	day.Opening = hours.Opening
	day.Closing = hours.Closing
	if !day.Closing.After(day.Opening) {
		day.IsClosed = true
	}
	return day
}

// Window returns the open interval of the day in loc.
func (d Day) Window(loc *time.Location) schedule.Interval {
	return schedule.NewInterval(d.Date.At(d.Opening, loc), d.Date.At(d.Closing, loc))
}

// Admit checks that interval lies inside the day's opening hours.
func (d Day) Admit(interval schedule.Interval, loc *time.Location) error {
	if d.IsClosed {
		msg := fmt.Sprintf("The establishment is closed on %s", d.Date)
		if d.Notice != "" {
			msg += " (" + d.Notice + ")"
		}
		return (&schedule.Error{Kind: schedule.KindClosed, Message: msg}).On(d.Date)
	}
	if !interval.Within(d.Window(loc)) {
		return schedule.Errorf(schedule.KindOutOfHours,
			"Requested time is outside opening hours (%s-%s) on %s", d.Opening, d.Closing, d.Date).On(d.Date)
	}
	return nil
}

// RulesFromRows builds Rules from the establishment row and its per-weekday overrides.
func RulesFromRows(est dbgen.Establishment, overrides []dbgen.EstablishmentWeekdayHour) (Rules, error) {
	opening, err := schedule.ParseTimeOfDay(est.OpeningTime)
	if err != nil {
		return Rules{}, fmt.Errorf("establishment %d opening time: %w", est.ID, err)
	}
	closing, err := schedule.ParseTimeOfDay(est.ClosingTime)
	if err != nil {
		return Rules{}, fmt.Errorf("establishment %d closing time: %w", est.ID, err)
	}
	openWeekdays, err := ParseWeekdays(est.OpenWeekdays)
	if err != nil {
		return Rules{}, fmt.Errorf("establishment %d open weekdays: %w", est.ID, err)
	}

	rules := Rules{
		OpenWeekdays: make(map[time.Weekday]bool, len(openWeekdays)),
		Default:      Hours{Opening: opening, Closing: closing},
		Overrides:    make(map[time.Weekday]Hours, len(overrides)),
	}
	for _, weekday := range openWeekdays {
		rules.OpenWeekdays[weekday] = true
	}
	for _, row := range overrides {
		o, err := schedule.ParseTimeOfDay(row.OpeningTime)
		if err != nil {
			return Rules{}, fmt.Errorf("weekday %d opening time: %w", row.DayOfWeek, err)
		}
		c, err := schedule.ParseTimeOfDay(row.ClosingTime)
		if err != nil {
			return Rules{}, fmt.Errorf("weekday %d closing time: %w", row.DayOfWeek, err)
		}
		rules.Overrides[time.Weekday(row.DayOfWeek)] = Hours{Opening: o, Closing: c}
	}
	return rules, nil
}

func HolidayFromRow(row dbgen.EstablishmentHoliday) (Holiday, error) {
	date, err := schedule.ParseLocalDate(row.Date)
	if err != nil {
		return Holiday{}, fmt.Errorf("holiday %d date: %w", row.ID, err)
	}
	holiday := Holiday{Date: date, IsOpen: row.IsOpen}
	if row.Note.Valid {
		holiday.Note = row.Note.String
	}
	if row.OpeningTime.Valid && strings.TrimSpace(row.OpeningTime.String) != "" {
		o, err := schedule.ParseTimeOfDay(row.OpeningTime.String)
		if err != nil {
			return Holiday{}, fmt.Errorf("holiday %d opening time: %w", row.ID, err)
		}
		holiday.Opening = &o
	}
	if row.ClosingTime.Valid && strings.TrimSpace(row.ClosingTime.String) != "" {
		c, err := schedule.ParseTimeOfDay(row.ClosingTime.String)
		if err != nil {
			return Holiday{}, fmt.Errorf("holiday %d closing time: %w", row.ID, err)
		}
		holiday.Closing = &c
	}
	return holiday, nil
}

// ParseWeekdays parses a comma-separated list of weekday numbers (0 = Sunday).
func ParseWeekdays(raw string) ([]time.Weekday, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	seen := make(map[time.Weekday]bool)
	var weekdays []time.Weekday
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		weekday := time.Weekday(n)
		if seen[weekday] {
			continue
		}
		seen[weekday] = true
		weekdays = append(weekdays, weekday)
	}
	return weekdays, nil
}

func FormatWeekdays(weekdays []time.Weekday) string {
	parts := make([]string, 0, len(weekdays))
	for _, weekday := range weekdays {
		parts = append(parts, strconv.Itoa(int(weekday)))
	}
	return strings.Join(parts, ",")
}
