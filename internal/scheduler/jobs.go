package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/alerts"
	"github.com/codr1/Courtbook/internal/config"
	"github.com/codr1/Courtbook/internal/db"
	"github.com/codr1/Courtbook/internal/email"
	"github.com/codr1/Courtbook/internal/monthlypass"
	"github.com/codr1/Courtbook/internal/notify"
	"github.com/codr1/Courtbook/internal/schedule"
)

const jobTimeout = 2 * time.Minute

// Jobs holds the collaborators of the background jobs.
type Jobs struct {
	DB       *db.DB
	Config   config.SchedulerConfig
	Booking  config.BookingConfig
	Sender   email.EmailSender
	Alerts   *alerts.Service
	Passes   *monthlypass.Engine
	Notifier notify.Notifier
	Clock    schedule.Clock
}

// RegisterJobs adds every background job to the singleton scheduler.
func RegisterJobs(jobs Jobs) error {
	svc, err := ServiceInstance()
	if err != nil {
		return err
	}
	return jobs.register(svc)
}

func (j Jobs) register(svc *Service) error {
	if j.DB == nil {
		return fmt.Errorf("scheduler jobs require database")
	}
	if j.Clock == nil {
		j.Clock = schedule.SystemClock
	}

	entries := []struct {
		name string
		cron string
		run  func(context.Context) error
	}{
		{"email_outbox_delivery", j.Config.OutboxCron, j.deliverOutbox},
		{"availability_alert_sweep", j.Config.AlertSweepCron, j.sweepAlerts},
		{"booking_reminders", j.Config.RemindersCron, j.sendReminders},
		{"stale_pass_requests", j.Config.StalePassesCron, j.expireStalePasses},
	}
	for _, entry := range entries {
		entry := entry
		jobLogger := log.With().
			Str("component", entry.name+"_job").
			Str("job_name", entry.name).
			Str("cron", entry.cron).
			Logger()
		if _, err := svc.AddJob(entry.name, entry.cron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			ctx = jobLogger.WithContext(ctx)
			if err := entry.run(ctx); err != nil {
				jobLogger.Error().Err(err).Msg("Scheduler job failed")
			}
		}); err != nil {
			return fmt.Errorf("add %s job: %w", entry.name, err)
		}
	}
	return nil
}

func (j Jobs) deliverOutbox(ctx context.Context) error {
	if j.Sender == nil {
		log.Ctx(ctx).Debug().Msg("Outbox delivery skipped: email sender not configured")
		return nil
	}
	stats, err := email.DeliverDue(ctx, j.DB.Queries, j.Sender, j.Clock.Now(), j.Config.OutboxBatchSize, j.Config.OutboxMaxAttempts)
	if err != nil {
		return err
	}
	if stats.Sent+stats.Failed+stats.Retry > 0 {
		log.Ctx(ctx).Info().
			Int("sent", stats.Sent).
			Int("failed", stats.Failed).
			Int("retry", stats.Retry).
			Msg("Outbox delivery finished")
	}
	return nil
}

func (j Jobs) sweepAlerts(ctx context.Context) error {
	if j.Alerts == nil {
		return nil
	}
	stats, err := j.Alerts.Sweep(ctx)
	if err != nil {
		return err
	}
	if stats.Expired > 0 || stats.Notified > 0 {
		log.Ctx(ctx).Info().
			Int64("expired", stats.Expired).
			Int("notified", stats.Notified).
			Msg("Availability alert sweep finished")
	}
	return nil
}

func (j Jobs) sendReminders(ctx context.Context) error {
	queued, err := SendBookingReminders(ctx, j.DB, j.Notifier, j.Booking.ReminderHoursBefore, j.Clock.Now())
	if err != nil {
		return err
	}
	if queued > 0 {
		log.Ctx(ctx).Info().Int("queued", queued).Msg("Booking reminders queued")
	}
	return nil
}

func (j Jobs) expireStalePasses(ctx context.Context) error {
	if j.Passes == nil {
		return nil
	}
	expired, err := j.Passes.ExpireStale(ctx)
	if err != nil {
		return err
	}
	if expired > 0 {
		log.Ctx(ctx).Info().Int("expired", expired).Msg("Stale monthly pass requests cancelled")
	}
	return nil
}
