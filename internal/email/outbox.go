package email

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	dbgen "github.com/codr1/Courtbook/internal/db/generated"
)

const (
	OutboxPending = "PENDING"
	OutboxSent    = "SENT"
	OutboxFailed  = "FAILED"

	retryBaseDelay = time.Minute
	retryMaxDelay  = time.Hour
)

// Enqueue stores msg in the outbox. It reports false when a message with the
// same dedupe key is already queued or sent.
func Enqueue(ctx context.Context, q dbgen.Querier, msg Message, now time.Time) (bool, error) {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return false, fmt.Errorf("recipient is required")
	}
	key := strings.TrimSpace(msg.DedupeKey)
	if key == "" {
		key = uuid.NewString()
	}

	rows, err := q.EnqueueEmail(ctx, dbgen.EnqueueEmailParams{
		Recipient:     to,
		Sender:        strings.TrimSpace(msg.From),
		Subject:       msg.Subject,
		TextBody:      msg.Text,
		HtmlBody:      msg.HTML,
		DedupeKey:     key,
		NextAttemptAt: now.UTC(),
		CreatedAt:     now.UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("enqueue email %s: %w", key, err)
	}
	return rows > 0, nil
}

// RetryDelay doubles from one minute per failed attempt, capped at an hour.
func RetryDelay(attempts int64) time.Duration {
	delay := retryBaseDelay
	for i := int64(1); i < attempts; i++ {
		delay *= 2
		if delay >= retryMaxDelay {
			return retryMaxDelay
		}
	}
	return delay
}

type DeliveryStats struct {
	Sent   int
	Failed int
	Retry  int
}

// DeliverDue sends up to limit pending messages whose next attempt is due.
// A message that fails maxAttempts times is marked FAILED.
func DeliverDue(ctx context.Context, q dbgen.Querier, sender EmailSender, now time.Time, limit, maxAttempts int) (DeliveryStats, error) {
	var stats DeliveryStats
	if sender == nil {
		return stats, fmt.Errorf("email sender is required")
	}

	due, err := q.ListDueEmails(ctx, dbgen.ListDueEmailsParams{Now: now.UTC(), Limit: int64(limit)})
	if err != nil {
		return stats, fmt.Errorf("list due emails: %w", err)
	}

	logger := log.Ctx(ctx)
	for _, row := range due {
		msg := Message{
			To:        row.Recipient,
			From:      row.Sender,
			Subject:   row.Subject,
			Text:      row.TextBody,
			HTML:      row.HtmlBody,
			DedupeKey: row.DedupeKey,
		}

		sendErr := sender.Send(ctx, msg)
		if sendErr == nil {
			if err := q.MarkEmailSent(ctx, dbgen.MarkEmailSentParams{
				SentAt: sql.NullTime{Time: now.UTC(), Valid: true},
				ID:     row.ID,
			}); err != nil {
				return stats, fmt.Errorf("mark email %d sent: %w", row.ID, err)
			}
			stats.Sent++
			continue
		}

		attempts := row.Attempts + 1
		status := OutboxPending
		if attempts >= int64(maxAttempts) {
			status = OutboxFailed
			stats.Failed++
		} else {
			stats.Retry++
		}
		logger.Warn().
			Err(sendErr).
			Int64("email_id", row.ID).
			Int64("attempts", attempts).
			Str("status", status).
			Msg("Email delivery attempt failed")

		if err := q.MarkEmailAttemptFailed(ctx, dbgen.MarkEmailAttemptFailedParams{
			Status:        status,
			LastError:     sendErr.Error(),
			NextAttemptAt: now.UTC().Add(RetryDelay(attempts)),
			ID:            row.ID,
		}); err != nil {
			return stats, fmt.Errorf("mark email %d failed: %w", row.ID, err)
		}
	}
	return stats, nil
}
