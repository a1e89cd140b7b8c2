// Package blocks admits owner-created court blocks: single, weekly repeats
// and date-range series.
package blocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/api/authz"
	"github.com/codr1/Courtbook/internal/availability"
	"github.com/codr1/Courtbook/internal/calendar"
	"github.com/codr1/Courtbook/internal/db"
	dbgen "github.com/codr1/Courtbook/internal/db/generated"
	"github.com/codr1/Courtbook/internal/notify"
	"github.com/codr1/Courtbook/internal/schedule"
)

const (
	MaxRepeatWeeks = 3
	MaxSeriesDays  = 366
	maxNoteLength  = 200
)

type Request struct {
	CourtID     int64
	Start       time.Time
	End         time.Time
	RepeatWeeks int
	Note        string
}

// SeriesRequest blocks StartTime-EndTime on every date from StartDate to
// EndDate inclusive whose weekday is listed.
type SeriesRequest struct {
	CourtID   int64
	StartDate schedule.LocalDate
	EndDate   schedule.LocalDate
	Weekdays  []time.Weekday
	StartTime schedule.TimeOfDay
	EndTime   schedule.TimeOfDay
	Note      string
}

type Result struct {
	IDs      []int64 `json:"ids"`
	SeriesID string  `json:"seriesId,omitempty"`
}

type Engine struct {
	db          *db.DB
	clock       schedule.Clock
	notifier    notify.Notifier
	invalidator availability.Invalidator
	freed       availability.FreedListener
}

type Option func(*Engine)

func WithClock(clock schedule.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithInvalidator(inv availability.Invalidator) Option {
	return func(e *Engine) { e.invalidator = inv }
}

func WithFreedListener(l availability.FreedListener) Option {
	return func(e *Engine) { e.freed = l }
}

func NewEngine(database *db.DB, opts ...Option) (*Engine, error) {
	if database == nil {
		return nil, errors.New("block engine requires a database")
	}
	e := &Engine{
		db:          database,
		clock:       schedule.SystemClock,
		notifier:    notify.Nop{},
		invalidator: availability.NopHooks,
		freed:       availability.NopHooks,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// occurrenceBuilder expands a request into establishment-local intervals once
// the time zone is known.
type occurrenceBuilder func(loc *time.Location) ([]schedule.Interval, error)

// Create blocks one interval, or RepeatWeeks+1 weekly intervals.
func (e *Engine) Create(ctx context.Context, actor authz.AuthUser, req Request) (Result, error) {
	if req.RepeatWeeks < 0 || req.RepeatWeeks > MaxRepeatWeeks {
		return Result{}, schedule.Errorf(schedule.KindValidation, "repeat weeks must be between 0 and %d", MaxRepeatWeeks)
	}
	build := func(loc *time.Location) ([]schedule.Interval, error) {
		first := schedule.NewInterval(req.Start, req.End).In(loc)
		if err := schedule.ValidateInterval(first); err != nil {
			return nil, err
		}
		out := make([]schedule.Interval, 0, req.RepeatWeeks+1)
		for week := 0; week <= req.RepeatWeeks; week++ {
			out = append(out, first.ShiftWeeks(week))
		}
		return out, nil
	}
	return e.admit(ctx, actor, req.CourtID, req.Note, build)
}

// CreateSeries blocks the same daily time on every matching date of a range.
func (e *Engine) CreateSeries(ctx context.Context, actor authz.AuthUser, req SeriesRequest) (Result, error) {
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return Result{}, schedule.Errorf(schedule.KindValidation, "start and end date are required")
	}
	if req.EndDate.Before(req.StartDate) {
		return Result{}, schedule.Errorf(schedule.KindValidation, "end date must not be before start date")
	}
	if req.StartDate.DaysUntil(req.EndDate) >= MaxSeriesDays {
		return Result{}, schedule.Errorf(schedule.KindValidation, "a block series may span at most %d days", MaxSeriesDays)
	}
	if len(req.Weekdays) == 0 {
		return Result{}, schedule.Errorf(schedule.KindValidation, "at least one weekday is required")
	}
	wanted := make(map[time.Weekday]bool, len(req.Weekdays))
	for _, wd := range req.Weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return Result{}, schedule.Errorf(schedule.KindValidation, "weekday must be between 0 (Sunday) and 6 (Saturday)")
		}
		wanted[wd] = true
	}
	if !req.EndTime.After(req.StartTime) {
		return Result{}, schedule.Errorf(schedule.KindValidation, "end time must be after start time")
	}
	if !req.StartTime.Aligned() || !req.EndTime.Aligned() {
		return Result{}, schedule.Errorf(schedule.KindValidation, "start and end time must be on 30-minute boundaries")
	}

	build := func(loc *time.Location) ([]schedule.Interval, error) {
		var out []schedule.Interval
		for d := req.StartDate; !d.After(req.EndDate); d = d.AddDays(1) {
			if !wanted[d.Weekday()] {
				continue
			}
			out = append(out, schedule.NewInterval(d.At(req.StartTime, loc), d.At(req.EndTime, loc)))
		}
		if len(out) == 0 {
			return nil, schedule.Errorf(schedule.KindValidation, "no dates between %s and %s fall on the selected weekdays", req.StartDate, req.EndDate)
		}
		return out, nil
	}
	return e.admit(ctx, actor, req.CourtID, req.Note, build)
}

func (e *Engine) admit(ctx context.Context, actor authz.AuthUser, courtID int64, note string, build occurrenceBuilder) (Result, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "block_admission").
		Int64("court_id", courtID).
		Int64("user_id", actor.ID).
		Logger()

	note = strings.TrimSpace(note)
	if len(note) > maxNoteLength {
		return Result{}, schedule.Errorf(schedule.KindValidation, "note must be at most %d characters", maxNoteLength)
	}

	var (
		created     []dbgen.CourtBlock
		occurrences []schedule.Interval
		loc         *time.Location
		est         dbgen.Establishment
	)
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		if _, err := q.GetCourtByID(ctx, courtID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return schedule.Errorf(schedule.KindNotFound, "court not found")
			}
			return fmt.Errorf("load court %d: %w", courtID, err)
		}
		cal, err := calendar.NewResolver(q).LoadForCourt(ctx, courtID)
		if err != nil {
			return err
		}
		est = cal.Establishment
		// Ownership is read inside the transaction so a concurrent transfer is honoured.
		if !authz.CanManageEstablishment(&actor, est.OwnerUserID) {
			return schedule.Errorf(schedule.KindPermission, "Only the court owner can manage blocks")
		}

		loc = cal.Location
		occurrences, err = build(loc)
		if err != nil {
			return err
		}
		if err := checkDisjoint(occurrences); err != nil {
			return err
		}
		now := e.clock.Now()
		checker := availability.NewChecker(q)
		for _, occurrence := range occurrences {
			if occurrence.Start.Before(now) {
				return schedule.Errorf(schedule.KindValidation, "blocks cannot start in the past (%s)", schedule.DateOf(occurrence.Start)).
					On(schedule.DateOf(occurrence.Start))
			}
			if err := checker.Admit(ctx, courtID, occurrence, availability.Options{
				Buffer:   cal.Buffer(),
				Location: loc,
			}); err != nil {
				return err
			}
		}

		var seriesID sql.NullString
		if len(occurrences) > 1 {
			seriesID = sql.NullString{String: uuid.NewString(), Valid: true}
		}
		createdAt := now.UTC()
		created = make([]dbgen.CourtBlock, 0, len(occurrences))
		for _, occurrence := range occurrences {
			utc := occurrence.UTC()
			block, err := q.CreateCourtBlock(ctx, dbgen.CreateCourtBlockParams{
				CourtID:         courtID,
				StartTime:       utc.Start,
				EndTime:         utc.End,
				Note:            note,
				CreatedByUserID: actor.ID,
				SeriesID:        seriesID,
				CreatedAt:       createdAt,
			})
			if err != nil {
				return fmt.Errorf("create court block: %w", err)
			}
			created = append(created, block)
		}
		return nil
	})
	if err != nil {
		if schedule.KindOf(err) != "" {
			logger.Info().Err(err).Str("kind", string(schedule.KindOf(err))).Msg("Block refused")
		} else {
			logger.Error().Err(err).Msg("Failed to admit block")
		}
		return Result{}, err
	}

	result := Result{}
	for _, b := range created {
		result.IDs = append(result.IDs, b.ID)
	}
	if created[0].SeriesID.Valid {
		result.SeriesID = created[0].SeriesID.String
	}
	logger.Info().Ints64("block_ids", result.IDs).Msg("Blocks created")

	e.invalidator.Invalidate(ctx, courtID, loc, occurrences...)
	e.notifier.Notify(ctx, actor.ID, notify.KindBlockCreated, map[string]any{
		"blockIds": result.IDs,
		"courtId":  courtID,
	})
	return result, nil
}

// checkDisjoint rejects requests whose own occurrences overlap, such as a
// block longer than a week repeated weekly.
func checkDisjoint(occurrences []schedule.Interval) error {
	for i := range occurrences {
		for j := i + 1; j < len(occurrences); j++ {
			if occurrences[i].Overlaps(occurrences[j]) {
				date := schedule.DateOf(occurrences[j].Start)
				return schedule.Errorf(schedule.KindValidation,
					"repeated blocks would overlap each other on %s", date).On(date)
			}
		}
	}
	return nil
}

// Delete removes an owner block. Blocks that materialize a monthly pass are
// removed only through the pass.
func (e *Engine) Delete(ctx context.Context, actor authz.AuthUser, id int64) error {
	logger := log.Ctx(ctx).With().Str("component", "block_admission").Int64("block_id", id).Logger()

	var (
		block dbgen.CourtBlock
		est   dbgen.Establishment
	)
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		var err error
		block, err = q.GetCourtBlockByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return schedule.Errorf(schedule.KindNotFound, "block not found")
			}
			return fmt.Errorf("load block %d: %w", id, err)
		}
		est, err = q.GetEstablishmentByCourtID(ctx, block.CourtID)
		if err != nil {
			return fmt.Errorf("load establishment for court %d: %w", block.CourtID, err)
		}
		if !authz.CanManageEstablishment(&actor, est.OwnerUserID) {
			return schedule.Errorf(schedule.KindPermission, "Only the court owner can manage blocks")
		}
		if block.MonthlyPassID.Valid {
			return schedule.Errorf(schedule.KindState, "block belongs to monthly pass %d", block.MonthlyPassID.Int64)
		}
		rows, err := q.DeleteCourtBlock(ctx, id)
		if err != nil {
			return fmt.Errorf("delete block %d: %w", id, err)
		}
		if rows == 0 {
			return schedule.Errorf(schedule.KindNotFound, "block not found")
		}
		return nil
	})
	if err != nil {
		logger.Info().Err(err).Msg("Block deletion refused")
		return err
	}
	logger.Info().Int64("court_id", block.CourtID).Msg("Block deleted")

	interval := schedule.NewInterval(block.StartTime, block.EndTime)
	e.invalidator.Invalidate(ctx, block.CourtID, calendar.LoadLocation(ctx, est.Timezone), interval)
	e.notifier.Notify(ctx, actor.ID, notify.KindBlockDeleted, map[string]any{
		"blockIds": []int64{block.ID},
		"courtId":  block.CourtID,
	})
	e.freed.NotifyFreed(ctx, block.CourtID, interval)
	return nil
}
