package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/calendar"
	"github.com/codr1/Courtbook/internal/db"
	dbgen "github.com/codr1/Courtbook/internal/db/generated"
	"github.com/codr1/Courtbook/internal/email"
	"github.com/codr1/Courtbook/internal/notify"
)

const (
	defaultReminderHoursBefore = 24
	reminderJobWindow          = 15 * time.Minute
)

// SendBookingReminders queues one reminder for every CONFIRMED booking that
// starts hoursBefore hours from now, within the job window. The outbox dedupe
// key makes overlapping runs harmless.
func SendBookingReminders(ctx context.Context, database *db.DB, notifier notify.Notifier, hoursBefore int, now time.Time) (int, error) {
	if database == nil {
		return 0, fmt.Errorf("booking reminders require database")
	}
	if hoursBefore <= 0 {
		hoursBefore = defaultReminderHoursBefore
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	windowStart := now.UTC().Add(time.Duration(hoursBefore) * time.Hour)
	bookings, err := database.Queries.ListConfirmedBookingsStartingBetween(ctx, dbgen.ListConfirmedBookingsStartingBetweenParams{
		WindowStart: windowStart,
		WindowEnd:   windowStart.Add(reminderJobWindow),
	})
	if err != nil {
		return 0, fmt.Errorf("list upcoming bookings: %w", err)
	}

	logger := log.Ctx(ctx)
	queued := 0
	for _, booking := range bookings {
		inserted, err := queueReminder(ctx, database.Queries, booking, now)
		if err != nil {
			logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("Failed to queue booking reminder")
			continue
		}
		if !inserted {
			continue
		}
		queued++
		notifier.Notify(ctx, booking.CustomerUserID, notify.KindBookingReminder, map[string]any{
			"bookingId": booking.ID,
			"courtId":   booking.CourtID,
			"startTime": booking.StartTime.Format(time.RFC3339),
		})
	}
	return queued, nil
}

func queueReminder(ctx context.Context, q *dbgen.Queries, booking dbgen.Booking, now time.Time) (bool, error) {
	court, err := q.GetCourtByID(ctx, booking.CourtID)
	if err != nil {
		return false, fmt.Errorf("load court: %w", err)
	}
	est, err := q.GetEstablishmentByCourtID(ctx, booking.CourtID)
	if err != nil {
		return false, fmt.Errorf("load establishment: %w", err)
	}
	user, err := q.GetUserByID(ctx, booking.CustomerUserID)
	if err != nil {
		return false, fmt.Errorf("load customer: %w", err)
	}

	loc := calendar.LoadLocation(ctx, est.Timezone)
	date, timeRange := email.FormatDateTimeRange(booking.StartTime.In(loc), booking.EndTime.In(loc))
	msg := email.BuildBookingReminder(email.BookingDetails{
		EstablishmentName: est.Name,
		CourtName:         court.Name,
		Dates:             []string{date},
		TimeRange:         timeRange,
		AmountCents:       booking.TotalPriceCents,
		PayAtCourt:        booking.PayAtCourt,
	})
	msg.To = user.Email
	msg.DedupeKey = "reminder:" + strconv.FormatInt(booking.ID, 10)
	if est.EmailFromAddress.Valid {
		msg.From = est.EmailFromAddress.String
	}
	return email.Enqueue(ctx, q, msg, now)
}
