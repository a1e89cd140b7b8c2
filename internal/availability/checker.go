// Package availability decides whether a court interval is free and builds
// the public availability views.
package availability

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbgen "github.com/codr1/Courtbook/internal/db/generated"
	"github.com/codr1/Courtbook/internal/schedule"
)

// Options tune a conflict check. Buffer pads existing bookings only; blocks
// and pass occurrences are always compared unpadded.
type Options struct {
	Buffer           time.Duration
	ExcludeBookingID int64
	ExcludeBlockID   int64
	ExcludePassID    int64
	// Location expands active passes whose occurrences are not yet stored as blocks.
	Location *time.Location
}

// Conflict describes the first existing reservation found overlapping a candidate.
type Conflict struct {
	Kind      schedule.Kind
	BookingID int64
	BlockID   int64
	PassID    int64
	Interval  schedule.Interval
}

// Err converts the conflict into a refusal attributed to date.
func (c *Conflict) Err(date schedule.LocalDate) *schedule.Error {
	var msg string
	switch c.Kind {
	case schedule.KindOverlapBooking:
		msg = "The court is already booked at this time"
	case schedule.KindOverlapPass:
		msg = "The court is reserved by a monthly pass at this time"
	default:
		msg = "The court is blocked at this time"
	}
	if !date.IsZero() {
		msg = fmt.Sprintf("%s on %s", msg, date)
	}
	return (&schedule.Error{Kind: c.Kind, Message: msg}).On(date)
}

// Checker runs conflict checks through a Querier, normally one bound to the
// admission transaction.
type Checker struct {
	q dbgen.Querier
}

func NewChecker(q dbgen.Querier) *Checker {
	return &Checker{q: q}
}

// FindConflict returns the first conflict for candidate on courtID, or nil
// when the interval is free. Bookings are checked first, then blocks, then
// active passes that have not been materialized.
func (c *Checker) FindConflict(ctx context.Context, courtID int64, candidate schedule.Interval, opts Options) (*Conflict, error) {
	candidate = candidate.UTC()

	// A booking [s,e) padded by b overlaps [S,E) iff s < E+b and e > S-b.
	window := candidate.Pad(opts.Buffer)
	bookings, err := c.q.ListOverlappingBookings(ctx, dbgen.ListOverlappingBookingsParams{
		CourtID:     courtID,
		WindowEnd:   window.End,
		WindowStart: window.Start,
		ExcludeID:   opts.ExcludeBookingID,
	})
	if err != nil {
		return nil, fmt.Errorf("list overlapping bookings: %w", err)
	}
	if len(bookings) > 0 {
		b := bookings[0]
		return &Conflict{
			Kind:      schedule.KindOverlapBooking,
			BookingID: b.ID,
			Interval:  schedule.NewInterval(b.StartTime, b.EndTime),
		}, nil
	}

	blocks, err := c.q.ListOverlappingCourtBlocks(ctx, dbgen.ListOverlappingCourtBlocksParams{
		CourtID:       courtID,
		WindowEnd:     candidate.End,
		WindowStart:   candidate.Start,
		ExcludeID:     opts.ExcludeBlockID,
		ExcludePassID: sql.NullInt64{Int64: opts.ExcludePassID, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("list overlapping blocks: %w", err)
	}
	if len(blocks) > 0 {
		b := blocks[0]
		conflict := &Conflict{
			Kind:     schedule.KindOverlapBlock,
			BlockID:  b.ID,
			Interval: schedule.NewInterval(b.StartTime, b.EndTime),
		}
		if b.MonthlyPassID.Valid {
			conflict.Kind = schedule.KindOverlapPass
			conflict.PassID = b.MonthlyPassID.Int64
		}
		return conflict, nil
	}

	return c.findPassOccurrenceConflict(ctx, courtID, candidate, opts)
}

func (c *Checker) findPassOccurrenceConflict(ctx context.Context, courtID int64, candidate schedule.Interval, opts Options) (*Conflict, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	local := candidate.In(loc)
	months := []schedule.Month{schedule.DateOf(local.Start).YearMonth()}
	if endMonth := schedule.DateOf(local.End.Add(-time.Nanosecond)).YearMonth(); endMonth != months[0] {
		months = append(months, endMonth)
	}

	for _, month := range months {
		passes, err := c.q.ListActiveMonthlyPassesForCourtMonth(ctx, dbgen.ListActiveMonthlyPassesForCourtMonthParams{
			CourtID:   courtID,
			Month:     month.String(),
			ExcludeID: opts.ExcludePassID,
		})
		if err != nil {
			return nil, fmt.Errorf("list active monthly passes: %w", err)
		}
		for _, pass := range passes {
			reservation, err := ReservationFromPass(pass)
			if err != nil {
				return nil, err
			}
			if reservation.Materialized {
				continue
			}
			for _, occurrence := range reservation.OccurrencesInMonth(loc) {
				if occurrence.Overlaps(candidate) {
					return &Conflict{
						Kind:     schedule.KindOverlapPass,
						PassID:   pass.ID,
						Interval: occurrence.Interval,
					}, nil
				}
			}
		}
	}
	return nil, nil
}

// Admit returns a dated refusal when candidate conflicts with anything on the court.
func (c *Checker) Admit(ctx context.Context, courtID int64, candidate schedule.Interval, opts Options) error {
	conflict, err := c.FindConflict(ctx, courtID, candidate, opts)
	if err != nil {
		return err
	}
	if conflict != nil {
		loc := opts.Location
		if loc == nil {
			loc = time.UTC
		}
		return conflict.Err(schedule.DateOf(candidate.Start.In(loc)))
	}
	return nil
}

// AdmitPattern validates a whole month of weekly occurrences: the pattern
// must not share a weekday slot with another active pass, and no occurrence
// may overlap a booking or block. Occurrences are compared without buffer.
func (c *Checker) AdmitPattern(ctx context.Context, courtID int64, reservation schedule.WeeklyReservation, loc *time.Location, excludePassID int64) error {
	if loc == nil {
		loc = time.UTC
	}
	occurrences := reservation.OccurrencesInMonth(loc)
	if len(occurrences) == 0 {
		return schedule.Errorf(schedule.KindValidation, "%s has no %s", reservation.Month, reservation.Weekday)
	}

	others, err := c.q.ListActiveMonthlyPassesForCourtMonth(ctx, dbgen.ListActiveMonthlyPassesForCourtMonthParams{
		CourtID:   courtID,
		Month:     reservation.Month.String(),
		ExcludeID: excludePassID,
	})
	if err != nil {
		return fmt.Errorf("list active monthly passes: %w", err)
	}
	for _, pass := range others {
		other, err := ReservationFromPass(pass)
		if err != nil {
			return err
		}
		if reservation.SharesSlot(other) {
			first := occurrences[0].Date
			return schedule.Errorf(schedule.KindOverlapPass,
				"The court is reserved by a monthly pass on %ss %s-%s (first conflict on %s)",
				reservation.Weekday, other.Start, other.End, first).On(first)
		}
	}

	for _, occurrence := range occurrences {
		conflict, err := c.FindConflict(ctx, courtID, occurrence.Interval, Options{
			ExcludePassID: excludePassID,
			Location:      loc,
		})
		if err != nil {
			return err
		}
		if conflict != nil {
			return conflict.Err(occurrence.Date)
		}
	}
	return nil
}

// ReservationFromPass maps a stored monthly pass onto the recurring pattern type.
func ReservationFromPass(pass dbgen.MonthlyPass) (schedule.WeeklyReservation, error) {
	month, err := schedule.ParseMonth(pass.Month)
	if err != nil {
		return schedule.WeeklyReservation{}, fmt.Errorf("monthly pass %d month: %w", pass.ID, err)
	}
	start, err := schedule.ParseTimeOfDay(pass.StartTime)
	if err != nil {
		return schedule.WeeklyReservation{}, fmt.Errorf("monthly pass %d start: %w", pass.ID, err)
	}
	end, err := schedule.ParseTimeOfDay(pass.EndTime)
	if err != nil {
		return schedule.WeeklyReservation{}, fmt.Errorf("monthly pass %d end: %w", pass.ID, err)
	}
	return schedule.WeeklyReservation{
		Month:        month,
		Weekday:      time.Weekday(pass.Weekday),
		Start:        start,
		End:          end,
		Materialized: pass.MaterializedAt.Valid,
	}, nil
}
