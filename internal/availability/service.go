package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/codr1/Courtbook/internal/cache"
	"github.com/codr1/Courtbook/internal/calendar"
	"github.com/codr1/Courtbook/internal/db"
	dbgen "github.com/codr1/Courtbook/internal/db/generated"
	"github.com/codr1/Courtbook/internal/schedule"
)

type BookingView struct {
	ID     int64     `json:"id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status string    `json:"status"`
}

type BlockView struct {
	ID            int64     `json:"id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Note          string    `json:"note"`
	MonthlyPassID *int64    `json:"monthlyPassId,omitempty"`
}

// DayAvailability is the read model for one court on one calendar date.
type DayAvailability struct {
	CourtID     int64              `json:"courtId"`
	Date        schedule.LocalDate `json:"date"`
	IsClosed    bool               `json:"isClosed"`
	Notice      string             `json:"notice,omitempty"`
	OpeningTime string             `json:"openingTime,omitempty"`
	ClosingTime string             `json:"closingTime,omitempty"`
	BufferMins  int64              `json:"bufferMinutes"`
	Timezone    string             `json:"timezone"`
	Bookings    []BookingView      `json:"bookings"`
	Blocks      []BlockView        `json:"blocks"`
}

func (d DayAvailability) bookingIntervals() []schedule.Interval {
	out := make([]schedule.Interval, 0, len(d.Bookings))
	for _, b := range d.Bookings {
		out = append(out, schedule.NewInterval(b.Start, b.End))
	}
	return out
}

func (d DayAvailability) blockIntervals() []schedule.Interval {
	out := make([]schedule.Interval, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		out = append(out, schedule.NewInterval(b.Start, b.End))
	}
	return out
}

// Service serves availability reads. It never writes; admissions call
// Invalidate after commit.
type Service struct {
	db    *db.DB
	cache *cache.JSONCache
	clock schedule.Clock
	group singleflight.Group
}

func NewService(database *db.DB, dayCache *cache.JSONCache, clock schedule.Clock) *Service {
	if clock == nil {
		clock = schedule.SystemClock
	}
	return &Service{db: database, cache: dayCache, clock: clock}
}

func dayKey(courtID int64, date schedule.LocalDate) string {
	return "day:" + strconv.FormatInt(courtID, 10) + ":" + date.String()
}

// DayAvailability returns the resolved hours plus the bookings and blocks
// touching date on courtID.
func (s *Service) DayAvailability(ctx context.Context, courtID int64, date schedule.LocalDate) (DayAvailability, error) {
	key := dayKey(courtID, date)
	logger := log.Ctx(ctx).With().Str("component", "availability").Int64("court_id", courtID).Str("date", date.String()).Logger()

	var cached DayAvailability
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn().Err(err).Msg("Availability cache read failed")
	}
	if hit {
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		view, err := s.loadDay(ctx, courtID, date)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, view); err != nil {
			logger.Warn().Err(err).Msg("Availability cache write failed")
		}
		return view, nil
	})
	if err != nil {
		return DayAvailability{}, err
	}
	return v.(DayAvailability), nil
}

func (s *Service) loadDay(ctx context.Context, courtID int64, date schedule.LocalDate) (DayAvailability, error) {
	q := s.db.Queries
	if _, err := q.GetCourtByID(ctx, courtID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DayAvailability{}, schedule.Errorf(schedule.KindNotFound, "court not found")
		}
		return DayAvailability{}, fmt.Errorf("load court %d: %w", courtID, err)
	}

	cal, err := calendar.NewResolver(q).LoadForCourt(ctx, courtID)
	if err != nil {
		return DayAvailability{}, err
	}
	day, err := cal.Resolve(ctx, date)
	if err != nil {
		return DayAvailability{}, err
	}

	view := DayAvailability{
		CourtID:    courtID,
		Date:       date,
		IsClosed:   day.IsClosed,
		Notice:     day.Notice,
		BufferMins: cal.Establishment.BookingBufferMinutes,
		Timezone:   cal.Location.String(),
		Bookings:   []BookingView{},
		Blocks:     []BlockView{},
	}
	if !day.IsClosed {
		view.OpeningTime = day.Opening.String()
		view.ClosingTime = day.Closing.String()
	}

	// Whole local day, so commitments outside opening hours still show.
	dayStart := date.At(schedule.TimeOfDay{}, cal.Location)
	dayEnd := date.AddDays(1).At(schedule.TimeOfDay{}, cal.Location)
	window := schedule.NewInterval(dayStart, dayEnd).UTC()

	bookings, err := q.ListOverlappingBookings(ctx, dbgen.ListOverlappingBookingsParams{
		CourtID:     courtID,
		WindowEnd:   window.End,
		WindowStart: window.Start,
	})
	if err != nil {
		return DayAvailability{}, fmt.Errorf("list bookings: %w", err)
	}
	for _, b := range bookings {
		view.Bookings = append(view.Bookings, BookingView{ID: b.ID, Start: b.StartTime.UTC(), End: b.EndTime.UTC(), Status: b.Status})
	}

	blocks, err := q.ListOverlappingCourtBlocks(ctx, dbgen.ListOverlappingCourtBlocksParams{
		CourtID:       courtID,
		WindowEnd:     window.End,
		WindowStart:   window.Start,
		ExcludePassID: sql.NullInt64{Valid: true},
	})
	if err != nil {
		return DayAvailability{}, fmt.Errorf("list blocks: %w", err)
	}
	for _, b := range blocks {
		bv := BlockView{ID: b.ID, Start: b.StartTime.UTC(), End: b.EndTime.UTC(), Note: b.Note}
		if b.MonthlyPassID.Valid {
			passID := b.MonthlyPassID.Int64
			bv.MonthlyPassID = &passID
		}
		view.Blocks = append(view.Blocks, bv)
	}

	passBlocks, err := s.unmaterializedPassBlocks(ctx, courtID, date, cal.Location)
	if err != nil {
		return DayAvailability{}, err
	}
	view.Blocks = append(view.Blocks, passBlocks...)

	return view, nil
}

func (s *Service) unmaterializedPassBlocks(ctx context.Context, courtID int64, date schedule.LocalDate, loc *time.Location) ([]BlockView, error) {
	passes, err := s.db.Queries.ListActiveMonthlyPassesForCourtMonth(ctx, dbgen.ListActiveMonthlyPassesForCourtMonthParams{
		CourtID: courtID,
		Month:   date.YearMonth().String(),
	})
	if err != nil {
		return nil, fmt.Errorf("list active monthly passes: %w", err)
	}
	var out []BlockView
	for _, pass := range passes {
		reservation, err := ReservationFromPass(pass)
		if err != nil {
			return nil, err
		}
		if reservation.Materialized || reservation.Weekday != date.Weekday() {
			continue
		}
		passID := pass.ID
		out = append(out, BlockView{
			Start:         date.At(reservation.Start, loc).UTC(),
			End:           date.At(reservation.End, loc).UTC(),
			Note:          "Monthly pass",
			MonthlyPassID: &passID,
		})
	}
	return out, nil
}

// Slots lists bookable start times of the given duration on date. Past
// starts are omitted and inactive courts have none.
func (s *Service) Slots(ctx context.Context, courtID int64, date schedule.LocalDate, duration time.Duration) ([]Slot, error) {
	if duration <= 0 || duration%schedule.SlotStep != 0 {
		return nil, schedule.Errorf(schedule.KindValidation, "duration must be a positive multiple of %d minutes", int(schedule.SlotStep/time.Minute))
	}

	court, err := s.db.Queries.GetCourtByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schedule.Errorf(schedule.KindNotFound, "court not found")
		}
		return nil, fmt.Errorf("load court %d: %w", courtID, err)
	}
	if !court.IsActive {
		return []Slot{}, nil
	}

	view, err := s.DayAvailability(ctx, courtID, date)
	if err != nil {
		return nil, err
	}
	if view.IsClosed {
		return []Slot{}, nil
	}

	loc := calendar.LoadLocation(ctx, view.Timezone)
	opening, err := schedule.ParseTimeOfDay(view.OpeningTime)
	if err != nil {
		return nil, fmt.Errorf("cached opening time: %w", err)
	}
	closing, err := schedule.ParseTimeOfDay(view.ClosingTime)
	if err != nil {
		return nil, fmt.Errorf("cached closing time: %w", err)
	}
	day := calendar.Day{Date: date, Opening: opening, Closing: closing}
	buffer := time.Duration(view.BufferMins) * time.Minute

	slots := BuildSlotGrid(day, loc, duration, view.bookingIntervals(), view.blockIntervals(), buffer, s.clock.Now())
	if slots == nil {
		slots = []Slot{}
	}
	return slots, nil
}

// Invalidate drops cached day views for every local date the intervals touch.
func (s *Service) Invalidate(ctx context.Context, courtID int64, loc *time.Location, intervals ...schedule.Interval) {
	if !s.cache.Enabled() || len(intervals) == 0 {
		return
	}
	if loc == nil {
		loc = time.UTC
	}
	seen := make(map[string]struct{})
	var keys []string
	for _, interval := range intervals {
		local := interval.In(loc)
		first := schedule.DateOf(local.Start)
		last := schedule.DateOf(local.End.Add(-time.Nanosecond))
		for d := first; !d.After(last); d = d.AddDays(1) {
			key := dayKey(courtID, d)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Ctx(ctx).Warn().Err(err).Int64("court_id", courtID).Msg("Availability cache invalidation failed")
	}
}
