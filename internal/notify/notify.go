// Package notify delivers post-commit side effects: in-app notifications,
// outbox emails and broker events. Failures are logged and swallowed.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/db"
	dbgen "github.com/codr1/Courtbook/internal/db/generated"
	"github.com/codr1/Courtbook/internal/email"
	"github.com/codr1/Courtbook/internal/schedule"
)

type Kind string

const (
	KindBookingCreated   Kind = "booking.created"
	KindBookingConfirmed Kind = "booking.confirmed"
	KindBookingCancelled Kind = "booking.cancelled"
	KindBookingReminder  Kind = "booking.reminder"
	KindBlockCreated     Kind = "block.created"
	KindBlockDeleted     Kind = "block.deleted"
	KindPassRequested    Kind = "pass.requested"
	KindPassActivated    Kind = "pass.activated"
	KindPassCancelled    Kind = "pass.cancelled"
	KindAlertAvailable   Kind = "alert.available"
)

const (
	eventPrefix     = "courtbook."
	dispatchTimeout = 5 * time.Second
)

// Notifier is the engines' view of the notification subsystem. Both calls are
// fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, userID int64, kind Kind, payload any)
	EnqueueEmail(ctx context.Context, msg email.Message)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Notify(context.Context, int64, Kind, any) {}
func (Nop) EnqueueEmail(context.Context, email.Message) {}

// Dispatcher stores notifications and outbox rows and optionally publishes
// each notification as a broker event keyed "courtbook.<kind>".
type Dispatcher struct {
	db        *db.DB
	publisher EventPublisher
	clock     schedule.Clock
}

func NewDispatcher(database *db.DB, publisher EventPublisher, clock schedule.Clock) *Dispatcher {
	if clock == nil {
		clock = schedule.SystemClock
	}
	return &Dispatcher{db: database, publisher: publisher, clock: clock}
}

type event struct {
	UserID     int64     `json:"userId"`
	Kind       Kind      `json:"kind"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (d *Dispatcher) Notify(ctx context.Context, userID int64, kind Kind, payload any) {
	ctx, cancel := email.DetachedContext(ctx, dispatchTimeout)
	defer cancel()

	logger := log.Ctx(ctx).With().Str("component", "notify").Int64("user_id", userID).Str("kind", string(kind)).Logger()
	now := d.clock.Now().UTC()

	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode notification payload")
		return
	}
	if _, err := d.db.Queries.CreateNotification(ctx, dbgen.CreateNotificationParams{
		UserID:    userID,
		Kind:      string(kind),
		Payload:   string(raw),
		CreatedAt: now,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to store notification")
	}

	if d.publisher == nil {
		return
	}
	if err := d.publisher.PublishJSON(ctx, eventPrefix+string(kind), event{
		UserID:     userID,
		Kind:       kind,
		Payload:    payload,
		OccurredAt: now,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to publish notification event")
	}
}

func (d *Dispatcher) EnqueueEmail(ctx context.Context, msg email.Message) {
	ctx, cancel := email.DetachedContext(ctx, dispatchTimeout)
	defer cancel()

	queued, err := email.Enqueue(ctx, d.db.Queries, msg, d.clock.Now())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("dedupe_key", msg.DedupeKey).Msg("Failed to enqueue email")
		return
	}
	if !queued {
		log.Ctx(ctx).Debug().Str("dedupe_key", msg.DedupeKey).Msg("Email already queued")
	}
}
