// Package alerts lets customers watch an unavailable court interval and tells
// them once when it frees up.
package alerts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
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

// MaxActivePerUser caps how many intervals one customer may watch at once.
const MaxActivePerUser = 20

type Service struct {
	db       *db.DB
	clock    schedule.Clock
	notifier notify.Notifier
}

func NewService(database *db.DB, clock schedule.Clock, notifier notify.Notifier) *Service {
	if clock == nil {
		clock = schedule.SystemClock
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{db: database, clock: clock, notifier: notifier}
}

func (s *Service) logger(ctx context.Context) zerolog.Logger {
	return log.Ctx(ctx).With().Str("component", "availability_alerts").Logger()
}

// Register watches interval on courtID. Intervals that could be booked right
// now are refused.
func (s *Service) Register(ctx context.Context, actor authz.AuthUser, courtID int64, interval schedule.Interval) (dbgen.AvailabilityAlert, error) {
	if actor.Role != authz.RoleCustomer {
		return dbgen.AvailabilityAlert{}, schedule.Errorf(schedule.KindPermission, "Only customers can register availability alerts")
	}
	q := s.db.Queries
	court, err := q.GetCourtByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.AvailabilityAlert{}, schedule.Errorf(schedule.KindNotFound, "court not found")
		}
		return dbgen.AvailabilityAlert{}, fmt.Errorf("load court %d: %w", courtID, err)
	}
	if !court.IsActive {
		return dbgen.AvailabilityAlert{}, schedule.Errorf(schedule.KindValidation, "%s is not accepting bookings", court.Name)
	}
	cal, err := calendar.NewResolver(q).LoadForCourt(ctx, courtID)
	if err != nil {
		return dbgen.AvailabilityAlert{}, err
	}
	local := interval.In(cal.Location)
	if err := schedule.ValidateInterval(local); err != nil {
		return dbgen.AvailabilityAlert{}, err
	}
	now := s.clock.Now()
	if !local.Start.After(now) {
		return dbgen.AvailabilityAlert{}, schedule.Errorf(schedule.KindValidation, "alerts can only watch future times")
	}
	if err := cal.Admit(ctx, local); err != nil {
		return dbgen.AvailabilityAlert{}, err
	}

	conflict, err := availability.NewChecker(q).FindConflict(ctx, courtID, local, availability.Options{
		Buffer:   cal.Buffer(),
		Location: cal.Location,
	})
	if err != nil {
		return dbgen.AvailabilityAlert{}, err
	}
	if conflict == nil {
		return dbgen.AvailabilityAlert{}, schedule.Errorf(schedule.KindValidation, "interval is already available")
	}

	existing, err := q.ListAvailabilityAlertsForUser(ctx, actor.ID)
	if err != nil {
		return dbgen.AvailabilityAlert{}, fmt.Errorf("list alerts: %w", err)
	}
	active := 0
	for _, a := range existing {
		if !a.IsActive {
			continue
		}
		active++
		if a.CourtID == courtID && a.StartTime.Equal(local.Start.UTC()) && a.EndTime.Equal(local.End.UTC()) {
			return a, nil
		}
	}
	if active >= MaxActivePerUser {
		return dbgen.AvailabilityAlert{}, schedule.Errorf(schedule.KindValidation, "at most %d alerts can be active", MaxActivePerUser)
	}

	utc := local.UTC()
	alert, err := q.CreateAvailabilityAlert(ctx, dbgen.CreateAvailabilityAlertParams{
		UserID:    actor.ID,
		CourtID:   courtID,
		StartTime: utc.Start,
		EndTime:   utc.End,
		CreatedAt: now.UTC(),
	})
	if err != nil {
		return dbgen.AvailabilityAlert{}, fmt.Errorf("create alert: %w", err)
	}
	s.logger(ctx).Info().
		Int64("alert_id", alert.ID).
		Int64("court_id", courtID).
		Int64("user_id", actor.ID).
		Msg("Availability alert registered")
	return alert, nil
}

// Deactivate stops an alert owned by actor.
func (s *Service) Deactivate(ctx context.Context, actor authz.AuthUser, id int64) error {
	alert, err := s.db.Queries.GetAvailabilityAlertByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return schedule.Errorf(schedule.KindNotFound, "alert not found")
		}
		return fmt.Errorf("load alert %d: %w", id, err)
	}
	if alert.UserID != actor.ID {
		return schedule.Errorf(schedule.KindNotFound, "alert not found")
	}
	if !alert.IsActive {
		return schedule.Errorf(schedule.KindState, "alert is no longer active")
	}
	if _, err := s.db.Queries.DeactivateAvailabilityAlert(ctx, id); err != nil {
		return fmt.Errorf("deactivate alert %d: %w", id, err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, actor authz.AuthUser) ([]dbgen.AvailabilityAlert, error) {
	alerts, err := s.db.Queries.ListAvailabilityAlertsForUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// NotifyFreed re-evaluates every active alert overlapping freed. Failures are
// logged; the change that freed the interval is already committed.
func (s *Service) NotifyFreed(ctx context.Context, courtID int64, freed schedule.Interval) {
	logger := s.logger(ctx).With().Int64("court_id", courtID).Logger()
	freed = freed.UTC()
	candidates, err := s.db.Queries.ListActiveAlertsOverlapping(ctx, dbgen.ListActiveAlertsOverlappingParams{
		CourtID:     courtID,
		WindowEnd:   freed.End,
		WindowStart: freed.Start,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list alerts for freed interval")
		return
	}
	if len(candidates) == 0 {
		return
	}
	notified, err := s.evaluate(ctx, candidates)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to evaluate alerts")
		return
	}
	if notified > 0 {
		logger.Info().Int("notified", notified).Msg("Availability alerts notified")
	}
}

type SweepStats struct {
	Expired  int64
	Notified int
}

// Sweep retires alerts that have ended and notifies those whose interval is
// free again.
func (s *Service) Sweep(ctx context.Context) (SweepStats, error) {
	var stats SweepStats
	expired, err := s.db.Queries.DeactivateExpiredAvailabilityAlerts(ctx, s.clock.Now().UTC())
	if err != nil {
		return stats, fmt.Errorf("deactivate expired alerts: %w", err)
	}
	stats.Expired = expired

	active, err := s.db.Queries.ListActiveAvailabilityAlerts(ctx)
	if err != nil {
		return stats, fmt.Errorf("list active alerts: %w", err)
	}
	stats.Notified, err = s.evaluate(ctx, active)
	return stats, err
}

func (s *Service) evaluate(ctx context.Context, alerts []dbgen.AvailabilityAlert) (int, error) {
	q := s.db.Queries
	checker := availability.NewChecker(q)
	calendars := make(map[int64]*calendar.Calendar)
	now := s.clock.Now()
	notified := 0

	for _, alert := range alerts {
		if !alert.StartTime.After(now) {
			if _, err := q.DeactivateAvailabilityAlert(ctx, alert.ID); err != nil {
				return notified, fmt.Errorf("deactivate started alert %d: %w", alert.ID, err)
			}
			continue
		}
		cal, ok := calendars[alert.CourtID]
		if !ok {
			loaded, err := calendar.NewResolver(q).LoadForCourt(ctx, alert.CourtID)
			if err != nil {
				return notified, err
			}
			cal = loaded
			calendars[alert.CourtID] = cal
		}
		watched := schedule.NewInterval(alert.StartTime, alert.EndTime).In(cal.Location)
		conflict, err := checker.FindConflict(ctx, alert.CourtID, watched, availability.Options{
			Buffer:   cal.Buffer(),
			Location: cal.Location,
		})
		if err != nil {
			return notified, err
		}
		if conflict != nil {
			continue
		}
		if err := cal.Admit(ctx, watched); err != nil {
			if schedule.KindOf(err) == "" {
				return notified, err
			}
			continue
		}

		rows, err := q.MarkAvailabilityAlertNotified(ctx, dbgen.MarkAvailabilityAlertNotifiedParams{
			NotifiedAt: sql.NullTime{Time: now.UTC(), Valid: true},
			ID:         alert.ID,
		})
		if err != nil {
			return notified, fmt.Errorf("mark alert %d notified: %w", alert.ID, err)
		}
		if rows == 0 {
			continue
		}
		notified++
		s.send(ctx, alert, cal, watched)
	}
	return notified, nil
}

func (s *Service) send(ctx context.Context, alert dbgen.AvailabilityAlert, cal *calendar.Calendar, watched schedule.Interval) {
	s.notifier.Notify(ctx, alert.UserID, notify.KindAlertAvailable, map[string]any{
		"alertId":   alert.ID,
		"courtId":   alert.CourtID,
		"startTime": watched.Start.Format(time.RFC3339),
		"endTime":   watched.End.Format(time.RFC3339),
	})

	user, err := s.db.Queries.GetUserByID(ctx, alert.UserID)
	if err != nil {
		s.logger(ctx).Error().Err(err).Int64("user_id", alert.UserID).Msg("Failed to load user for alert email")
		return
	}
	details := email.AlertDetails{EstablishmentName: cal.Establishment.Name}
	if court, err := s.db.Queries.GetCourtByID(ctx, alert.CourtID); err == nil {
		details.CourtName = court.Name
	}
	details.Date, details.TimeRange = email.FormatDateTimeRange(watched.Start, watched.End)
	msg := email.BuildAlertAvailable(details)
	msg.To = user.Email
	msg.DedupeKey = fmt.Sprintf("alert:%d", alert.ID)
	if cal.Establishment.EmailFromAddress.Valid {
		msg.From = cal.Establishment.EmailFromAddress.String
	}
	s.notifier.EnqueueEmail(ctx, msg)
}
