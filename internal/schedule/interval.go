package schedule

import "time"

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Overlaps reports whether the two half-open intervals share any instant.
// Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Pad widens the interval by d on both sides.
func (i Interval) Pad(d time.Duration) Interval {
	if d <= 0 {
		return i
	}
	return Interval{Start: i.Start.Add(-d), End: i.End.Add(d)}
}

// Within reports whether i lies entirely inside outer.
func (i Interval) Within(outer Interval) bool {
	return !i.Start.Before(outer.Start) && !i.End.After(outer.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) In(loc *time.Location) Interval {
	return Interval{Start: i.Start.In(loc), End: i.End.In(loc)}
}

func (i Interval) UTC() Interval {
	return i.In(time.UTC)
}

// ShiftWeeks moves both ends by n calendar weeks in the interval's own
// location, keeping the wall-clock times across DST changes.
func (i Interval) ShiftWeeks(n int) Interval {
	return Interval{Start: i.Start.AddDate(0, 0, 7*n), End: i.End.AddDate(0, 0, 7*n)}
}

// IsAligned reports whether t sits on a SlotStep boundary of its own wall clock.
func IsAligned(t time.Time) bool {
	return t.Second() == 0 && t.Nanosecond() == 0 && TimeOfDayOf(t).Aligned()
}

// ValidateInterval checks ordering and alignment. Times are judged in their
// own location, so callers pass establishment-local values.
func ValidateInterval(i Interval) error {
	if i.Start.IsZero() || i.End.IsZero() {
		return Errorf(KindValidation, "start and end time are required")
	}
	if !i.End.After(i.Start) {
		return Errorf(KindValidation, "end time must be after start time")
	}
	if !IsAligned(i.Start) || !IsAligned(i.End) {
		return Errorf(KindValidation, "start and end time must be on 30-minute boundaries")
	}
	return nil
}
