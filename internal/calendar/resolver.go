package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	dbgen "github.com/codr1/Courtbook/internal/db/generated"
	"github.com/codr1/Courtbook/internal/schedule"
)

// Resolver loads establishment calendars through a Querier, so it can run
// inside an admission transaction.
type Resolver struct {
	q dbgen.Querier
}

func NewResolver(q dbgen.Querier) *Resolver {
	return &Resolver{q: q}
}

// Calendar is one establishment's weekly rules bound to its time zone.
type Calendar struct {
	Establishment dbgen.Establishment
	Location      *time.Location
	Rules         Rules

	q dbgen.Querier
}

func (r *Resolver) Load(ctx context.Context, establishmentID int64) (*Calendar, error) {
	est, err := r.q.GetEstablishmentByID(ctx, establishmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schedule.Errorf(schedule.KindNotFound, "establishment not found")
		}
		return nil, fmt.Errorf("load establishment %d: %w", establishmentID, err)
	}
	return r.build(ctx, est)
}

func (r *Resolver) LoadForCourt(ctx context.Context, courtID int64) (*Calendar, error) {
	est, err := r.q.GetEstablishmentByCourtID(ctx, courtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schedule.Errorf(schedule.KindNotFound, "court not found")
		}
		return nil, fmt.Errorf("load establishment for court %d: %w", courtID, err)
	}
	return r.build(ctx, est)
}

func (r *Resolver) build(ctx context.Context, est dbgen.Establishment) (*Calendar, error) {
	overrides, err := r.q.ListEstablishmentWeekdayHours(ctx, est.ID)
	if err != nil {
		return nil, fmt.Errorf("load weekday hours for establishment %d: %w", est.ID, err)
	}
	rules, err := RulesFromRows(est, overrides)
	if err != nil {
		return nil, err
	}
	return &Calendar{
		Establishment: est,
		Location:      LoadLocation(ctx, est.Timezone),
		Rules:         rules,
		q:             r.q,
	}, nil
}

// LoadLocation falls back to UTC when the zone name is empty or unknown.
func LoadLocation(ctx context.Context, name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("timezone", name).Msg("Failed to load establishment timezone, using UTC")
		return time.UTC
	}
	return loc
}

// Today returns the current calendar date at the establishment.
func (c *Calendar) Today(now time.Time) schedule.LocalDate {
	return schedule.DateOf(now.In(c.Location))
}

// Buffer is the padding applied around existing bookings.
func (c *Calendar) Buffer() time.Duration {
	return time.Duration(c.Establishment.BookingBufferMinutes) * time.Minute
}

func (c *Calendar) Resolve(ctx context.Context, date schedule.LocalDate) (Day, error) {
	row, err := c.q.GetEstablishmentHoliday(ctx, dbgen.GetEstablishmentHolidayParams{
		EstablishmentID: c.Establishment.ID,
		Date:            date.String(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resolve(c.Rules, date, nil), nil
		}
		return Day{}, fmt.Errorf("load holiday %s: %w", date, err)
	}
	holiday, err := HolidayFromRow(row)
	if err != nil {
		return Day{}, err
	}
	return Resolve(c.Rules, date, &holiday), nil
}

// Admit resolves the date on which interval starts and checks the interval
// against that day's hours.
func (c *Calendar) Admit(ctx context.Context, interval schedule.Interval) error {
	local := interval.In(c.Location)
	day, err := c.Resolve(ctx, schedule.DateOf(local.Start))
	if err != nil {
		return err
	}
	return day.Admit(local, c.Location)
}
