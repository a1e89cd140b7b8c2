// Package monthlypass runs the monthly pass lifecycle: request, owner
// confirmation with materialization into court blocks, and cancellation.
package monthlypass

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/api/authz"
	"github.com/codr1/Courtbook/internal/availability"
	"github.com/codr1/Courtbook/internal/calendar"
	"github.com/codr1/Courtbook/internal/db"
	dbgen "github.com/codr1/Courtbook/internal/db/generated"
	"github.com/codr1/Courtbook/internal/email"
	"github.com/codr1/Courtbook/internal/notify"
	"github.com/codr1/Courtbook/internal/schedule"
)

const (
	StatusPending   = "PENDING"
	StatusActive    = "ACTIVE"
	StatusCancelled = "CANCELLED"

	// Next-month requests open this many days before the month starts, for
	// renewals of an identical active pass only.
	RenewalWindowDays = 14
	// From this many days before the month starts anyone may request.
	OpenWindowDays = 7
)

type Request struct {
	CourtID   int64
	Month     schedule.Month
	Weekday   time.Weekday
	StartTime schedule.TimeOfDay
	EndTime   schedule.TimeOfDay
}

func (r Request) reservation() schedule.WeeklyReservation {
	return schedule.WeeklyReservation{
		Month:   r.Month,
		Weekday: r.Weekday,
		Start:   r.StartTime,
		End:     r.EndTime,
	}
}

type Engine struct {
	db          *db.DB
	clock       schedule.Clock
	notifier    notify.Notifier
	invalidator availability.Invalidator
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

func NewEngine(database *db.DB, opts ...Option) (*Engine, error) {
	if database == nil {
		return nil, errors.New("monthly pass engine requires a database")
	}
	e := &Engine{
		db:          database,
		clock:       schedule.SystemClock,
		notifier:    notify.Nop{},
		invalidator: availability.NopHooks,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) logger(ctx context.Context) zerolog.Logger {
	return log.Ctx(ctx).With().Str("component", "monthly_pass").Logger()
}

// Request records a PENDING pass. Asking again while a request is PENDING
// returns that request unchanged; a CANCELLED request for the same month is
// revived.
func (e *Engine) Request(ctx context.Context, actor authz.AuthUser, req Request) (dbgen.MonthlyPass, error) {
	logger := e.logger(ctx).With().
		Int64("court_id", req.CourtID).
		Int64("user_id", actor.ID).
		Str("month", req.Month.String()).
		Logger()

	if actor.Role != authz.RoleCustomer {
		return dbgen.MonthlyPass{}, schedule.Errorf(schedule.KindPermission, "Only customers can request monthly passes")
	}
	reservation := req.reservation()
	if err := reservation.Validate(); err != nil {
		return dbgen.MonthlyPass{}, err
	}

	var (
		pass     dbgen.MonthlyPass
		existing bool
		est      dbgen.Establishment
		court    dbgen.Court
	)
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		var err error
		court, err = loadCourt(ctx, q, req.CourtID)
		if err != nil {
			return err
		}
		if !court.IsActive {
			return schedule.Errorf(schedule.KindValidation, "%s is not accepting bookings", court.Name)
		}
		if !court.MonthlyPriceCents.Valid {
			return schedule.Errorf(schedule.KindValidation, "%s does not offer monthly passes", court.Name)
		}

		prior, err := q.GetMonthlyPassForCustomerMonth(ctx, dbgen.GetMonthlyPassForCustomerMonthParams{
			CourtID:        req.CourtID,
			CustomerUserID: actor.ID,
			Month:          req.Month.String(),
		})
		hasPrior := err == nil
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("load existing monthly pass: %w", err)
		}
		if hasPrior {
			switch prior.Status {
			case StatusPending:
				pass, existing = prior, true
				return nil
			case StatusActive:
				return schedule.Errorf(schedule.KindState, "You already hold an active monthly pass for %s on this court", req.Month)
			}
		}

		cal, err := calendar.NewResolver(q).LoadForCourt(ctx, req.CourtID)
		if err != nil {
			return err
		}
		est = cal.Establishment
		now := e.clock.Now()

		if err := e.checkRequestWindow(ctx, q, cal, req.CourtID, actor, reservation, now); err != nil {
			return err
		}
		if err := checkRegularHours(cal.Rules, reservation); err != nil {
			return err
		}
		var excludeID int64
		if hasPrior {
			excludeID = prior.ID
		}
		if err := availability.NewChecker(q).AdmitPattern(ctx, req.CourtID, reservation, cal.Location, excludeID); err != nil {
			return err
		}

		stamp := now.UTC()
		terms := court.MonthlyTerms.String
		if hasPrior {
			pass, err = q.ReviveMonthlyPass(ctx, dbgen.ReviveMonthlyPassParams{
				Weekday:       int64(req.Weekday),
				StartTime:     req.StartTime.String(),
				EndTime:       req.EndTime.String(),
				PriceCents:    court.MonthlyPriceCents.Int64,
				TermsSnapshot: terms,
				UpdatedAt:     stamp,
				ID:            prior.ID,
			})
			if err != nil {
				return fmt.Errorf("revive monthly pass %d: %w", prior.ID, err)
			}
			return nil
		}
		pass, err = q.CreateMonthlyPass(ctx, dbgen.CreateMonthlyPassParams{
			CourtID:        req.CourtID,
			CustomerUserID: actor.ID,
			Month:          req.Month.String(),
			Weekday:        int64(req.Weekday),
			StartTime:      req.StartTime.String(),
			EndTime:        req.EndTime.String(),
			PriceCents:     court.MonthlyPriceCents.Int64,
			TermsSnapshot:  terms,
			CreatedAt:      stamp,
			UpdatedAt:      stamp,
		})
		if err != nil {
			return fmt.Errorf("create monthly pass: %w", err)
		}
		return nil
	})
	if err != nil {
		if schedule.KindOf(err) != "" {
			logger.Info().Err(err).Str("kind", string(schedule.KindOf(err))).Msg("Monthly pass request refused")
		} else {
			logger.Error().Err(err).Msg("Failed to record monthly pass request")
		}
		return dbgen.MonthlyPass{}, err
	}
	if existing {
		logger.Info().Int64("pass_id", pass.ID).Msg("Monthly pass request already pending")
		return pass, nil
	}
	logger.Info().Int64("pass_id", pass.ID).Msg("Monthly pass requested")

	details := e.passDetails(ctx, est, court, pass)
	payload := passPayload(pass)
	e.notifier.Notify(ctx, est.OwnerUserID, notify.KindPassRequested, payload)
	e.notifier.Notify(ctx, pass.CustomerUserID, notify.KindPassRequested, payload)
	e.emailUser(ctx, est.OwnerUserID, est, email.BuildPassRequested(details), "pass:"+strconv.FormatInt(pass.ID, 10)+":requested:"+pass.UpdatedAt.UTC().Format(time.RFC3339))
	return pass, nil
}

// checkRequestWindow allows the current month until its first occurrence
// starts, and the next month from RenewalWindowDays before it begins.
func (e *Engine) checkRequestWindow(ctx context.Context, q dbgen.Querier, cal *calendar.Calendar, courtID int64, actor authz.AuthUser, reservation schedule.WeeklyReservation, now time.Time) error {
	today := cal.Today(now)
	current := today.YearMonth()

	switch reservation.Month {
	case current:
		occurrences := reservation.OccurrencesInMonth(cal.Location)
		if len(occurrences) == 0 || !now.Before(occurrences[0].Start) {
			return schedule.Errorf(schedule.KindValidation,
				"Requests for %s must be made before the first session starts", reservation.Month)
		}
		return nil

	case current.Next():
		firstDay := reservation.Month.FirstDay()
		daysLeft := today.DaysUntil(firstDay)
		if daysLeft > RenewalWindowDays {
			return schedule.Errorf(schedule.KindValidation,
				"Monthly pass requests for %s open on the penultimate week, from %s",
				reservation.Month, firstDay.AddDays(-RenewalWindowDays))
		}
		if daysLeft > OpenWindowDays {
			renewal, err := isRenewal(ctx, q, courtID, actor.ID, reservation, current)
			if err != nil {
				return err
			}
			if !renewal {
				return schedule.Errorf(schedule.KindValidation,
					"Until %s only holders of the same slot in %s may request it; requests open to everyone on %s",
					firstDay.AddDays(-OpenWindowDays), current, firstDay.AddDays(-OpenWindowDays))
			}
		}
		return nil
	}

	return schedule.Errorf(schedule.KindValidation,
		"Monthly passes can only be requested for %s or %s", current, current.Next())
}

// isRenewal reports whether the customer holds an ACTIVE pass on the same
// court with the same weekday and times in the current month.
func isRenewal(ctx context.Context, q dbgen.Querier, courtID, customerID int64, reservation schedule.WeeklyReservation, current schedule.Month) (bool, error) {
	courtPasses, err := q.ListActiveMonthlyPassesForCourtMonth(ctx, dbgen.ListActiveMonthlyPassesForCourtMonthParams{
		CourtID: courtID,
		Month:   current.String(),
	})
	if err != nil {
		return false, fmt.Errorf("list current monthly passes: %w", err)
	}
	for _, p := range courtPasses {
		if p.CustomerUserID != customerID {
			continue
		}
		held, err := availability.ReservationFromPass(p)
		if err != nil {
			return false, err
		}
		if held.SamePattern(reservation) {
			return true, nil
		}
	}
	return false, nil
}

// checkRegularHours requires the weekly slot to sit inside the weekday's
// regular opening hours. Holidays are not consulted.
func checkRegularHours(rules calendar.Rules, reservation schedule.WeeklyReservation) error {
	hours, open := rules.HoursFor(reservation.Weekday)
	if !open {
		return schedule.Errorf(schedule.KindClosed, "The establishment is closed on %ss", reservation.Weekday)
	}
	if reservation.Start.Before(hours.Opening) || reservation.End.After(hours.Closing) {
		return schedule.Errorf(schedule.KindOutOfHours,
			"Requested time is outside opening hours (%s-%s) on %ss", hours.Opening, hours.Closing, reservation.Weekday)
	}
	return nil
}

// Confirm activates a PENDING pass and materializes one court block per
// occurrence date.
func (e *Engine) Confirm(ctx context.Context, actor authz.AuthUser, id int64) (dbgen.MonthlyPass, error) {
	logger := e.logger(ctx).With().Int64("pass_id", id).Logger()

	var (
		activated   dbgen.MonthlyPass
		est         dbgen.Establishment
		court       dbgen.Court
		loc         *time.Location
		occurrences []schedule.Occurrence
	)
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		pass, loadedEst, err := loadPass(ctx, q, id)
		if err != nil {
			return err
		}
		est = loadedEst
		if !authz.CanManageEstablishment(&actor, est.OwnerUserID) {
			return schedule.Errorf(schedule.KindPermission, "Only the court owner can confirm monthly passes")
		}
		if pass.Status != StatusPending {
			return schedule.Errorf(schedule.KindState, "monthly pass is %s, only PENDING passes can be confirmed", pass.Status)
		}
		court, err = loadCourt(ctx, q, pass.CourtID)
		if err != nil {
			return err
		}

		reservation, err := availability.ReservationFromPass(pass)
		if err != nil {
			return err
		}
		loc = calendar.LoadLocation(ctx, est.Timezone)
		if reservation.Month.Before(schedule.DateOf(e.clock.Now().In(loc)).YearMonth()) {
			return schedule.Errorf(schedule.KindState, "monthly pass for %s has already ended", reservation.Month)
		}
		if err := availability.NewChecker(q).AdmitPattern(ctx, pass.CourtID, reservation, loc, pass.ID); err != nil {
			return err
		}

		customer, err := q.GetUserByID(ctx, pass.CustomerUserID)
		if err != nil {
			return fmt.Errorf("load pass holder %d: %w", pass.CustomerUserID, err)
		}
		note := "Monthly pass · " + holderName(customer)
		now := e.clock.Now().UTC()
		occurrences = reservation.OccurrencesInMonth(loc)
		for _, occurrence := range occurrences {
			utc := occurrence.UTC()
			if _, err := q.CreateCourtBlock(ctx, dbgen.CreateCourtBlockParams{
				CourtID:         pass.CourtID,
				StartTime:       utc.Start,
				EndTime:         utc.End,
				Note:            note,
				CreatedByUserID: actor.ID,
				MonthlyPassID:   sql.NullInt64{Int64: pass.ID, Valid: true},
				CreatedAt:       now,
			}); err != nil {
				return fmt.Errorf("materialize monthly pass %d on %s: %w", pass.ID, occurrence.Date, err)
			}
		}

		activated, err = q.ActivateMonthlyPass(ctx, dbgen.ActivateMonthlyPassParams{
			MaterializedAt: sql.NullTime{Time: now, Valid: true},
			UpdatedAt:      now,
			ID:             pass.ID,
		})
		if err != nil {
			return fmt.Errorf("activate monthly pass %d: %w", pass.ID, err)
		}
		return nil
	})
	if err != nil {
		if schedule.KindOf(err) != "" {
			logger.Info().Err(err).Str("kind", string(schedule.KindOf(err))).Msg("Monthly pass confirmation refused")
		} else {
			logger.Error().Err(err).Msg("Failed to confirm monthly pass")
		}
		return dbgen.MonthlyPass{}, err
	}
	logger.Info().Int("blocks", len(occurrences)).Msg("Monthly pass activated")

	intervals := make([]schedule.Interval, 0, len(occurrences))
	for _, o := range occurrences {
		intervals = append(intervals, o.Interval)
	}
	e.invalidator.Invalidate(ctx, activated.CourtID, loc, intervals...)

	details := e.passDetails(ctx, est, court, activated)
	e.notifier.Notify(ctx, activated.CustomerUserID, notify.KindPassActivated, passPayload(activated))
	e.emailUser(ctx, activated.CustomerUserID, est, email.BuildPassActivated(details), "pass:"+strconv.FormatInt(activated.ID, 10)+":activated")
	return activated, nil
}

// Cancel rejects a PENDING pass. The owner and the requesting customer may
// cancel; active passes are kept until their month ends.
func (e *Engine) Cancel(ctx context.Context, actor authz.AuthUser, id int64) (dbgen.MonthlyPass, error) {
	logger := e.logger(ctx).With().Int64("pass_id", id).Logger()

	var (
		cancelled dbgen.MonthlyPass
		est       dbgen.Establishment
	)
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		pass, loadedEst, err := loadPass(ctx, q, id)
		if err != nil {
			return err
		}
		est = loadedEst
		isHolder := actor.Role == authz.RoleCustomer && actor.ID == pass.CustomerUserID
		if !isHolder && !authz.CanManageEstablishment(&actor, est.OwnerUserID) {
			return schedule.Errorf(schedule.KindPermission, "You cannot cancel this monthly pass")
		}
		if pass.Status != StatusPending {
			return schedule.Errorf(schedule.KindState, "monthly pass is %s, only PENDING passes can be cancelled", pass.Status)
		}
		cancelled, err = q.CancelMonthlyPass(ctx, dbgen.CancelMonthlyPassParams{
			UpdatedAt: e.clock.Now().UTC(),
			ID:        pass.ID,
		})
		if err != nil {
			return fmt.Errorf("cancel monthly pass %d: %w", pass.ID, err)
		}
		return nil
	})
	if err != nil {
		logger.Info().Err(err).Msg("Monthly pass cancellation refused")
		return dbgen.MonthlyPass{}, err
	}
	logger.Info().Int64("actor_id", actor.ID).Msg("Monthly pass cancelled")

	court, err := e.db.Queries.GetCourtByID(ctx, cancelled.CourtID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load court for cancellation email")
	}
	e.notifier.Notify(ctx, cancelled.CustomerUserID, notify.KindPassCancelled, passPayload(cancelled))
	e.emailUser(ctx, cancelled.CustomerUserID, est, email.BuildPassCancelled(e.passDetails(ctx, est, court, cancelled)),
		"pass:"+strconv.FormatInt(cancelled.ID, 10)+":cancelled:"+cancelled.UpdatedAt.UTC().Format(time.RFC3339))
	return cancelled, nil
}

// Get returns a pass visible to actor: its holder or the court owner.
func (e *Engine) Get(ctx context.Context, actor authz.AuthUser, id int64) (dbgen.MonthlyPass, error) {
	pass, est, err := loadPass(ctx, e.db.Queries, id)
	if err != nil {
		return dbgen.MonthlyPass{}, err
	}
	if actor.ID != pass.CustomerUserID && !authz.CanManageEstablishment(&actor, est.OwnerUserID) {
		return dbgen.MonthlyPass{}, schedule.Errorf(schedule.KindNotFound, "monthly pass not found")
	}
	return pass, nil
}

// List returns the passes actor may see. Owners see every pass of the court
// for month; customers see their own, filtered by court and month when given.
func (e *Engine) List(ctx context.Context, actor authz.AuthUser, courtID int64, month schedule.Month) ([]dbgen.MonthlyPass, error) {
	q := e.db.Queries
	if courtID != 0 && actor.Role != authz.RoleCustomer {
		est, err := q.GetEstablishmentByCourtID(ctx, courtID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, schedule.Errorf(schedule.KindNotFound, "court not found")
			}
			return nil, fmt.Errorf("load establishment for court %d: %w", courtID, err)
		}
		if !authz.CanManageEstablishment(&actor, est.OwnerUserID) {
			return nil, schedule.Errorf(schedule.KindPermission, "Only the court owner can list its monthly passes")
		}
		if month.IsZero() {
			return nil, schedule.Errorf(schedule.KindValidation, "month is required")
		}
		passes, err := q.ListMonthlyPassesForCourt(ctx, dbgen.ListMonthlyPassesForCourtParams{CourtID: courtID, Month: month.String()})
		if err != nil {
			return nil, fmt.Errorf("list monthly passes: %w", err)
		}
		return passes, nil
	}

	passes, err := q.ListMonthlyPassesForCustomer(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list monthly passes: %w", err)
	}
	out := passes[:0]
	for _, p := range passes {
		if courtID != 0 && p.CourtID != courtID {
			continue
		}
		if !month.IsZero() && p.Month != month.String() {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// ExpireStale cancels PENDING requests whose month is over at the court's
// establishment.
func (e *Engine) ExpireStale(ctx context.Context) (int, error) {
	now := e.clock.Now()
	// No zone is more than a day ahead of UTC, so this month bounds every
	// establishment's current month.
	latest := schedule.DateOf(now.UTC().Add(24 * time.Hour)).YearMonth()
	candidates, err := e.db.Queries.ListStalePendingMonthlyPasses(ctx, latest.String())
	if err != nil {
		return 0, fmt.Errorf("list stale monthly passes: %w", err)
	}
	locations := make(map[int64]*time.Location)
	expired := 0
	for _, pass := range candidates {
		loc, ok := locations[pass.CourtID]
		if !ok {
			est, err := e.db.Queries.GetEstablishmentByCourtID(ctx, pass.CourtID)
			if err != nil {
				return expired, fmt.Errorf("load establishment for court %d: %w", pass.CourtID, err)
			}
			loc = calendar.LoadLocation(ctx, est.Timezone)
			locations[pass.CourtID] = loc
		}
		month, err := schedule.ParseMonth(pass.Month)
		if err != nil {
			return expired, fmt.Errorf("monthly pass %d: %w", pass.ID, err)
		}
		if !month.Before(schedule.DateOf(now.In(loc)).YearMonth()) {
			continue
		}
		if _, err := e.db.Queries.CancelMonthlyPass(ctx, dbgen.CancelMonthlyPassParams{UpdatedAt: now.UTC(), ID: pass.ID}); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return expired, fmt.Errorf("expire monthly pass %d: %w", pass.ID, err)
		}
		expired++
		e.notifier.Notify(ctx, pass.CustomerUserID, notify.KindPassCancelled, passPayload(pass))
	}
	return expired, nil
}

func loadCourt(ctx context.Context, q dbgen.Querier, courtID int64) (dbgen.Court, error) {
	court, err := q.GetCourtByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Court{}, schedule.Errorf(schedule.KindNotFound, "court not found")
		}
		return dbgen.Court{}, fmt.Errorf("load court %d: %w", courtID, err)
	}
	return court, nil
}

func loadPass(ctx context.Context, q dbgen.Querier, id int64) (dbgen.MonthlyPass, dbgen.Establishment, error) {
	pass, err := q.GetMonthlyPassByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.MonthlyPass{}, dbgen.Establishment{}, schedule.Errorf(schedule.KindNotFound, "monthly pass not found")
		}
		return dbgen.MonthlyPass{}, dbgen.Establishment{}, fmt.Errorf("load monthly pass %d: %w", id, err)
	}
	est, err := q.GetEstablishmentByCourtID(ctx, pass.CourtID)
	if err != nil {
		return dbgen.MonthlyPass{}, dbgen.Establishment{}, fmt.Errorf("load establishment for court %d: %w", pass.CourtID, err)
	}
	return pass, est, nil
}

func holderName(u dbgen.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

func passPayload(p dbgen.MonthlyPass) map[string]any {
	return map[string]any{
		"passId":    p.ID,
		"courtId":   p.CourtID,
		"month":     p.Month,
		"weekday":   p.Weekday,
		"startTime": p.StartTime,
		"endTime":   p.EndTime,
		"status":    p.Status,
	}
}

func (e *Engine) passDetails(ctx context.Context, est dbgen.Establishment, court dbgen.Court, p dbgen.MonthlyPass) email.PassDetails {
	details := email.PassDetails{
		EstablishmentName: est.Name,
		CourtName:         court.Name,
		Month:             p.Month,
		Weekday:           time.Weekday(p.Weekday).String(),
		TimeRange:         p.StartTime + " - " + p.EndTime,
		PriceCents:        p.PriceCents,
		Terms:             p.TermsSnapshot,
	}
	if customer, err := e.db.Queries.GetUserByID(ctx, p.CustomerUserID); err == nil {
		details.CustomerName = holderName(customer)
	}
	return details
}

func (e *Engine) emailUser(ctx context.Context, userID int64, est dbgen.Establishment, msg email.Message, dedupeKey string) {
	user, err := e.db.Queries.GetUserByID(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("Failed to load user for monthly pass email")
		return
	}
	msg.To = user.Email
	msg.DedupeKey = dedupeKey
	if est.EmailFromAddress.Valid {
		msg.From = est.EmailFromAddress.String
	}
	e.notifier.EnqueueEmail(ctx, msg)
}
