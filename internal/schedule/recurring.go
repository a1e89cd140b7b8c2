package schedule

import "time"

// Occurrence is one dated instance of a recurring reservation.
type Occurrence struct {
	Date LocalDate
	Interval
}

// WeeklyReservation holds one weekday and time-of-day range for every
// matching date of a month. Monthly passes are the only source today.
// Materialized means every occurrence already exists as a court block, so
// conflict checks can rely on the block rows instead of expanding the pattern.
type WeeklyReservation struct {
	Month        Month
	Weekday      time.Weekday
	Start        TimeOfDay
	End          TimeOfDay
	Materialized bool
}

func (r WeeklyReservation) Validate() error {
	if r.Month.IsZero() {
		return Errorf(KindValidation, "month is required")
	}
	if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
		return Errorf(KindValidation, "weekday must be between 0 (Sunday) and 6 (Saturday)")
	}
	if !r.End.After(r.Start) {
		return Errorf(KindValidation, "end time must be after start time")
	}
	if !r.Start.Aligned() || !r.End.Aligned() {
		return Errorf(KindValidation, "start and end time must be on 30-minute boundaries")
	}
	return nil
}

// OccurrencesInMonth expands the pattern into concrete intervals in loc.
func (r WeeklyReservation) OccurrencesInMonth(loc *time.Location) []Occurrence {
	dates := r.Month.Dates(r.Weekday)
	occurrences := make([]Occurrence, 0, len(dates))
	for _, date := range dates {
		occurrences = append(occurrences, Occurrence{
			Date:     date,
			Interval: Interval{Start: date.At(r.Start, loc), End: date.At(r.End, loc)},
		})
	}
	return occurrences
}

// SharesSlot reports whether both patterns hold overlapping time on the same
// weekday of the same month.
func (r WeeklyReservation) SharesSlot(other WeeklyReservation) bool {
	if r.Month != other.Month || r.Weekday != other.Weekday {
		return false
	}
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

// SamePattern reports whether other repeats exactly the same weekday and times.
func (r WeeklyReservation) SamePattern(other WeeklyReservation) bool {
	return r.Weekday == other.Weekday && r.Start == other.Start && r.End == other.End
}
