package schedule

import (
	"fmt"
	"strings"
	"time"
)

const (
	minutesPerDay = 24 * 60

	// SlotStep is the granularity every booking, block and pass boundary must sit on.
	SlotStep = 30 * time.Minute
)

var timeOfDayLayouts = []string{"15:04", "3:04 PM", "3:04PM"}

// TimeOfDay is a wall-clock time between 00:00 and 24:00 inclusive.
type TimeOfDay struct {
	minutes int
}

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}
	total := hour*60 + minute
	if total > minutesPerDay {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}
	return TimeOfDay{minutes: total}, nil
}

// MustTimeOfDay is NewTimeOfDay for constants known to be valid.
func MustTimeOfDay(hour, minute int) TimeOfDay {
	tod, err := NewTimeOfDay(hour, minute)
	if err != nil {
		panic(err)
	}
	return tod
}

// ParseTimeOfDay accepts "15:04", "3:04 PM" and "24:00".
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TimeOfDay{}, fmt.Errorf("time is required")
	}
	if raw == "24:00" {
		return TimeOfDay{minutes: minutesPerDay}, nil
	}
	for _, layout := range timeOfDayLayouts {
		parsed, err := time.Parse(layout, strings.ToUpper(raw))
		if err == nil {
			return TimeOfDay{minutes: parsed.Hour()*60 + parsed.Minute()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("time must be formatted as HH:MM")
}

// TimeOfDayOf returns the wall-clock time of t in t's own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{minutes: t.Hour()*60 + t.Minute()}
}

func (t TimeOfDay) Minutes() int { return t.minutes }
func (t TimeOfDay) Hour() int    { return t.minutes / 60 }
func (t TimeOfDay) Minute() int  { return t.minutes % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) Before(other TimeOfDay) bool { return t.minutes < other.minutes }
func (t TimeOfDay) After(other TimeOfDay) bool  { return t.minutes > other.minutes }

// Aligned reports whether t falls on a SlotStep boundary.
func (t TimeOfDay) Aligned() bool {
	return t.minutes%int(SlotStep/time.Minute) == 0
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
