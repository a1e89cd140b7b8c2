// Package booking admits customer bookings and drives their status transitions.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/api/authz"
	"github.com/codr1/Courtbook/internal/availability"
	"github.com/codr1/Courtbook/internal/calendar"
	"github.com/codr1/Courtbook/internal/db"
	dbgen "github.com/codr1/Courtbook/internal/db/generated"
	"github.com/codr1/Courtbook/internal/email"
	"github.com/codr1/Courtbook/internal/notify"
	"github.com/codr1/Courtbook/internal/pricing"
	"github.com/codr1/Courtbook/internal/schedule"
)

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"

	MaxRepeatWeeks = 3
)

// Settings are the platform-wide switches that apply to one admission.
type Settings struct {
	PaymentsEnabled bool
}

type Request struct {
	CourtID     int64
	Start       time.Time
	End         time.Time
	RepeatWeeks int
	PayAtCourt  bool
}

// Payment tells the caller whether to start a checkout for the booking.
type Payment struct {
	Required    bool  `json:"required"`
	AmountCents int64 `json:"amountCents"`
}

type Result struct {
	IDs             []int64  `json:"ids"`
	Status          string   `json:"status"`
	SeriesID        string   `json:"seriesId,omitempty"`
	TotalPriceCents int64    `json:"totalPriceCents"`
	Payment         *Payment `json:"payment,omitempty"`
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
		return nil, errors.New("booking engine requires a database")
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

// admission is what Create learned inside the transaction and needs afterwards.
type admission struct {
	est         dbgen.Establishment
	court       dbgen.Court
	loc         *time.Location
	occurrences []schedule.Interval
	bookings    []dbgen.Booking
	payment     *Payment
}

// Create admits one booking, or RepeatWeeks+1 weekly bookings, atomically.
func (e *Engine) Create(ctx context.Context, settings Settings, actor authz.AuthUser, req Request) (Result, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "booking_admission").
		Int64("court_id", req.CourtID).
		Int64("user_id", actor.ID).
		Int("repeat_weeks", req.RepeatWeeks).
		Logger()

	if actor.Role != authz.RoleCustomer {
		return Result{}, schedule.Errorf(schedule.KindPermission, "Only customers can book courts")
	}
	if req.RepeatWeeks < 0 || req.RepeatWeeks > MaxRepeatWeeks {
		return Result{}, schedule.Errorf(schedule.KindValidation, "repeat weeks must be between 0 and %d", MaxRepeatWeeks)
	}

	var adm admission
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		var err error
		adm, err = e.admit(ctx, txdb.Queries, settings, actor, req)
		return err
	})
	if err != nil {
		if schedule.KindOf(err) != "" {
			logger.Info().Err(err).Str("kind", string(schedule.KindOf(err))).Msg("Booking refused")
		} else {
			logger.Error().Err(err).Msg("Failed to admit booking")
		}
		return Result{}, err
	}

	result := Result{Status: adm.bookings[0].Status, Payment: adm.payment}
	for _, b := range adm.bookings {
		result.IDs = append(result.IDs, b.ID)
		result.TotalPriceCents += b.TotalPriceCents
	}
	if adm.bookings[0].SeriesID.Valid {
		result.SeriesID = adm.bookings[0].SeriesID.String
	}

	logger.Info().
		Ints64("booking_ids", result.IDs).
		Str("status", result.Status).
		Int64("total_price_cents", result.TotalPriceCents).
		Msg("Booking admitted")

	e.invalidator.Invalidate(ctx, req.CourtID, adm.loc, adm.occurrences...)
	e.afterCreate(ctx, actor, adm, result)
	return result, nil
}

func (e *Engine) admit(ctx context.Context, q dbgen.Querier, settings Settings, actor authz.AuthUser, req Request) (admission, error) {
	court, err := q.GetCourtByID(ctx, req.CourtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return admission{}, schedule.Errorf(schedule.KindNotFound, "court not found")
		}
		return admission{}, fmt.Errorf("load court %d: %w", req.CourtID, err)
	}
	if !court.IsActive {
		return admission{}, schedule.Errorf(schedule.KindValidation, "%s is not accepting bookings", court.Name)
	}

	cal, err := calendar.NewResolver(q).LoadForCourt(ctx, req.CourtID)
	if err != nil {
		return admission{}, err
	}
	loc := cal.Location

	first := schedule.NewInterval(req.Start, req.End).In(loc)
	if err := schedule.ValidateInterval(first); err != nil {
		return admission{}, err
	}
	if first.Start.Before(e.clock.Now()) {
		return admission{}, schedule.Errorf(schedule.KindValidation, "start time must be in the future")
	}

	checker := availability.NewChecker(q)
	occurrences := make([]schedule.Interval, 0, req.RepeatWeeks+1)
	for week := 0; week <= req.RepeatWeeks; week++ {
		occurrence := first.ShiftWeeks(week)
		if err := cal.Admit(ctx, occurrence); err != nil {
			return admission{}, err
		}
		if err := checker.Admit(ctx, req.CourtID, occurrence, availability.Options{
			Buffer:   cal.Buffer(),
			Location: loc,
		}); err != nil {
			return admission{}, err
		}
		occurrences = append(occurrences, occurrence)
	}

	est := cal.Establishment
	var total int64
	prices := make([]int64, len(occurrences))
	for i, occurrence := range occurrences {
		prices[i] = pricing.For(court.PricePerHourCents, occurrence.Duration(), court.DiscountOver90MinPercent)
		total += prices[i]
	}

	paymentRequired := settings.PaymentsEnabled && est.RequiresPayment && !req.PayAtCourt && total > 0
	status := StatusConfirmed
	if paymentRequired || est.RequiresConfirmation {
		status = StatusPending
	}

	var seriesID sql.NullString
	if len(occurrences) > 1 {
		seriesID = sql.NullString{String: uuid.NewString(), Valid: true}
	}

	now := e.clock.Now().UTC()
	bookings := make([]dbgen.Booking, 0, len(occurrences))
	for i, occurrence := range occurrences {
		utc := occurrence.UTC()
		b, err := q.CreateBooking(ctx, dbgen.CreateBookingParams{
			CourtID:         req.CourtID,
			CustomerUserID:  actor.ID,
			StartTime:       utc.Start,
			EndTime:         utc.End,
			Status:          status,
			TotalPriceCents: prices[i],
			PayAtCourt:      req.PayAtCourt,
			SeriesID:        seriesID,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return admission{}, fmt.Errorf("create booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	adm := admission{
		est:         est,
		court:       court,
		loc:         loc,
		occurrences: occurrences,
		bookings:    bookings,
	}
	if paymentRequired {
		adm.payment = &Payment{Required: true, AmountCents: total}
	}
	return adm, nil
}

func (e *Engine) afterCreate(ctx context.Context, actor authz.AuthUser, adm admission, result Result) {
	payload := map[string]any{
		"bookingIds":      result.IDs,
		"courtId":         adm.court.ID,
		"status":          result.Status,
		"totalPriceCents": result.TotalPriceCents,
	}
	details := bookingDetails(adm.est, adm.court, adm.loc, adm.occurrences, result.TotalPriceCents, adm.payment != nil, adm.bookings[0].PayAtCourt)
	key := "booking:" + strconv.FormatInt(result.IDs[0], 10)

	if result.Status == StatusConfirmed {
		e.notifier.Notify(ctx, actor.ID, notify.KindBookingConfirmed, payload)
		e.emailUser(ctx, actor.ID, adm.est, email.BuildBookingConfirmed(details), key+":confirmed")
		return
	}

	e.notifier.Notify(ctx, actor.ID, notify.KindBookingCreated, payload)
	e.emailUser(ctx, actor.ID, adm.est, email.BuildBookingPending(details), key+":received")
	if adm.est.RequiresConfirmation {
		e.notifier.Notify(ctx, adm.est.OwnerUserID, notify.KindBookingCreated, payload)
	}
}

// loadManaged loads a booking and its establishment inside a transaction.
func loadManaged(ctx context.Context, q dbgen.Querier, id int64) (dbgen.Booking, dbgen.Establishment, error) {
	b, err := q.GetBookingByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Booking{}, dbgen.Establishment{}, schedule.Errorf(schedule.KindNotFound, "booking not found")
		}
		return dbgen.Booking{}, dbgen.Establishment{}, fmt.Errorf("load booking %d: %w", id, err)
	}
	est, err := q.GetEstablishmentByCourtID(ctx, b.CourtID)
	if err != nil {
		return dbgen.Booking{}, dbgen.Establishment{}, fmt.Errorf("load establishment for court %d: %w", b.CourtID, err)
	}
	return b, est, nil
}

// Confirm moves a PENDING booking to CONFIRMED after checking it still fits.
func (e *Engine) Confirm(ctx context.Context, actor authz.AuthUser, id int64) (dbgen.Booking, error) {
	logger := log.Ctx(ctx).With().Str("component", "booking_admission").Int64("booking_id", id).Logger()

	var (
		confirmed dbgen.Booking
		est       dbgen.Establishment
	)
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		b, loadedEst, err := loadManaged(ctx, q, id)
		if err != nil {
			return err
		}
		est = loadedEst
		if !authz.CanManageEstablishment(&actor, est.OwnerUserID) {
			return schedule.Errorf(schedule.KindPermission, "Only the court owner can confirm bookings")
		}
		if b.Status != StatusPending {
			return schedule.Errorf(schedule.KindState, "booking is %s, only PENDING bookings can be confirmed", b.Status)
		}

		// Hours and holidays may have changed while the booking was pending.
		cal, err := calendar.NewResolver(q).LoadForCourt(ctx, b.CourtID)
		if err != nil {
			return err
		}
		interval := schedule.NewInterval(b.StartTime, b.EndTime)
		if err := cal.Admit(ctx, interval); err != nil {
			return err
		}
		if err := availability.NewChecker(q).Admit(ctx, b.CourtID, interval, availability.Options{
			Buffer:           cal.Buffer(),
			ExcludeBookingID: b.ID,
			Location:         cal.Location,
		}); err != nil {
			return err
		}

		confirmed, err = q.UpdateBookingStatus(ctx, dbgen.UpdateBookingStatusParams{
			Status:    StatusConfirmed,
			UpdatedAt: e.clock.Now().UTC(),
			ID:        b.ID,
		})
		if err != nil {
			return fmt.Errorf("confirm booking %d: %w", b.ID, err)
		}
		return nil
	})
	if err != nil {
		logger.Info().Err(err).Msg("Booking confirmation refused")
		return dbgen.Booking{}, err
	}
	logger.Info().Msg("Booking confirmed")

	court, err := e.db.Queries.GetCourtByID(ctx, confirmed.CourtID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load court for confirmation email")
	}
	loc := calendar.LoadLocation(ctx, est.Timezone)
	interval := schedule.NewInterval(confirmed.StartTime, confirmed.EndTime).In(loc)
	details := bookingDetails(est, court, loc, []schedule.Interval{interval}, confirmed.TotalPriceCents, false, confirmed.PayAtCourt)

	e.invalidator.Invalidate(ctx, confirmed.CourtID, loc, interval)
	e.notifier.Notify(ctx, confirmed.CustomerUserID, notify.KindBookingConfirmed, map[string]any{
		"bookingIds": []int64{confirmed.ID},
		"courtId":    confirmed.CourtID,
	})
	e.emailUser(ctx, confirmed.CustomerUserID, est, email.BuildBookingConfirmed(details),
		"booking:"+strconv.FormatInt(confirmed.ID, 10)+":confirmed")
	return confirmed, nil
}

// Cancel releases a PENDING or CONFIRMED booking. The customer who holds it
// and the establishment owner may cancel.
func (e *Engine) Cancel(ctx context.Context, actor authz.AuthUser, id int64) (dbgen.Booking, error) {
	logger := log.Ctx(ctx).With().Str("component", "booking_admission").Int64("booking_id", id).Logger()

	var (
		cancelled dbgen.Booking
		est       dbgen.Establishment
	)
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		b, loadedEst, err := loadManaged(ctx, q, id)
		if err != nil {
			return err
		}
		est = loadedEst
		isHolder := actor.Role == authz.RoleCustomer && actor.ID == b.CustomerUserID
		if !isHolder && !authz.CanManageEstablishment(&actor, est.OwnerUserID) {
			return schedule.Errorf(schedule.KindPermission, "You cannot cancel this booking")
		}
		if b.Status == StatusCancelled {
			return schedule.Errorf(schedule.KindState, "booking is already cancelled")
		}

		cancelled, err = q.UpdateBookingStatus(ctx, dbgen.UpdateBookingStatusParams{
			Status:    StatusCancelled,
			UpdatedAt: e.clock.Now().UTC(),
			ID:        b.ID,
		})
		if err != nil {
			return fmt.Errorf("cancel booking %d: %w", b.ID, err)
		}
		return nil
	})
	if err != nil {
		logger.Info().Err(err).Msg("Booking cancellation refused")
		return dbgen.Booking{}, err
	}
	logger.Info().Int64("actor_id", actor.ID).Msg("Booking cancelled")

	loc := calendar.LoadLocation(ctx, est.Timezone)
	interval := schedule.NewInterval(cancelled.StartTime, cancelled.EndTime)
	e.invalidator.Invalidate(ctx, cancelled.CourtID, loc, interval)

	payload := map[string]any{
		"bookingIds":  []int64{cancelled.ID},
		"courtId":     cancelled.CourtID,
		"cancelledBy": actor.ID,
	}
	e.notifier.Notify(ctx, cancelled.CustomerUserID, notify.KindBookingCancelled, payload)
	if actor.ID != est.OwnerUserID {
		e.notifier.Notify(ctx, est.OwnerUserID, notify.KindBookingCancelled, payload)
	}

	court, err := e.db.Queries.GetCourtByID(ctx, cancelled.CourtID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load court for cancellation email")
	}
	details := bookingDetails(est, court, loc, []schedule.Interval{interval.In(loc)}, cancelled.TotalPriceCents, false, cancelled.PayAtCourt)
	e.emailUser(ctx, cancelled.CustomerUserID, est, email.BuildBookingCancelled(details),
		"booking:"+strconv.FormatInt(cancelled.ID, 10)+":cancelled")

	e.freed.NotifyFreed(ctx, cancelled.CourtID, interval)
	return cancelled, nil
}

func (e *Engine) emailUser(ctx context.Context, userID int64, est dbgen.Establishment, msg email.Message, dedupeKey string) {
	user, err := e.db.Queries.GetUserByID(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("Failed to load user for booking email")
		return
	}
	msg.To = user.Email
	msg.DedupeKey = dedupeKey
	if est.EmailFromAddress.Valid {
		msg.From = est.EmailFromAddress.String
	}
	e.notifier.EnqueueEmail(ctx, msg)
}

func bookingDetails(est dbgen.Establishment, court dbgen.Court, loc *time.Location, occurrences []schedule.Interval, total int64, paymentRequired, payAtCourt bool) email.BookingDetails {
	details := email.BookingDetails{
		EstablishmentName: est.Name,
		CourtName:         court.Name,
		AmountCents:       total,
		PaymentRequired:   paymentRequired,
		PayAtCourt:        payAtCourt,
	}
	for i, occurrence := range occurrences {
		local := occurrence.In(loc)
		date, timeRange := email.FormatDateTimeRange(local.Start, local.End)
		details.Dates = append(details.Dates, date)
		if i == 0 {
			details.TimeRange = timeRange
		}
	}
	return details
}
