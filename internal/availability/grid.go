package availability

import (
	"time"

	"github.com/codr1/Courtbook/internal/calendar"
	"github.com/codr1/Courtbook/internal/schedule"
)

type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BuildSlotGrid lists every start time on the day's 30-minute grid where a
// booking of the given duration fits before closing and touches no padded
// booking and no block. Starts before notBefore are skipped; pass the zero
// time to keep them all.
func BuildSlotGrid(day calendar.Day, loc *time.Location, duration time.Duration, bookings, blocks []schedule.Interval, buffer time.Duration, notBefore time.Time) []Slot {
	if day.IsClosed || duration <= 0 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	padded := make([]schedule.Interval, 0, len(bookings))
	for _, booking := range bookings {
		padded = append(padded, booking.Pad(buffer))
	}

	window := day.Window(loc)
	var slots []Slot
	for start := window.Start; !start.Add(duration).After(window.End); start = start.Add(schedule.SlotStep) {
		candidate := schedule.NewInterval(start, start.Add(duration))
		if !notBefore.IsZero() && candidate.Start.Before(notBefore) {
			continue
		}
		if overlapsAny(candidate, padded) || overlapsAny(candidate, blocks) {
			continue
		}
		slots = append(slots, Slot{Start: candidate.Start, End: candidate.End})
	}
	return slots
}

func overlapsAny(candidate schedule.Interval, intervals []schedule.Interval) bool {
	for _, interval := range intervals {
		if candidate.Overlaps(interval) {
			return true
		}
	}
	return false
}
