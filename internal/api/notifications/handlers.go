// internal/api/notifications/handlers.go
package notifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/api/apiutil"
	dbgen "github.com/codr1/Courtbook/internal/db/generated"
	"github.com/codr1/Courtbook/internal/schedule"
)

var (
	queries     *dbgen.Queries
	clock       schedule.Clock = schedule.SystemClock
	queriesOnce sync.Once
)

const (
	notificationsQueryTimeout = 5 * time.Second
	notificationsListLimit    = 25
	notificationsMaxLimit     = 100
)

func InitHandlers(q *dbgen.Queries, c schedule.Clock) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
		if c != nil {
			clock = c
		}
	})
}

type NotificationView struct {
	ID        int64           `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"createdAt"`
}

func notificationView(n dbgen.Notification) NotificationView {
	payload := json.RawMessage(n.Payload)
	if !json.Valid(payload) {
		payload = json.RawMessage("null")
	}
	return NotificationView{
		ID:        n.ID,
		Kind:      n.Kind,
		Payload:   payload,
		Read:      n.ReadAt.Valid,
		CreatedAt: n.CreatedAt,
	}
}

// GET /api/v1/notifications?limit=25
func HandleNotificationsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteErrorMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	user, ok := apiutil.RequireUser(w, r)
	if !ok {
		return
	}
	limit, err := limitFromQuery(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), notificationsQueryTimeout)
	defer cancel()

	rows, err := queries.ListNotificationsForUser(ctx, dbgen.ListNotificationsForUserParams{
		UserID: user.ID,
		Limit:  limit,
	})
	if err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to list notifications")
		apiutil.WriteErrorMessage(w, http.StatusInternalServerError, "Failed to load notifications")
		return
	}
	views := make([]NotificationView, 0, len(rows))
	for _, row := range rows {
		views = append(views, notificationView(row))
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]any{"notifications": views})
}

// POST /api/v1/notifications/{id}/read
func HandleNotificationRead(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteErrorMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	user, ok := apiutil.RequireUser(w, r)
	if !ok {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), notificationsQueryTimeout)
	defer cancel()

	updated, err := queries.MarkNotificationRead(ctx, dbgen.MarkNotificationReadParams{
		ReadAt: sql.NullTime{Time: clock.Now().UTC(), Valid: true},
		ID:     id,
		UserID: user.ID,
	})
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Failed to mark notification as read")
		apiutil.WriteErrorMessage(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	if updated == 0 {
		apiutil.WriteError(w, r, schedule.Errorf(schedule.KindNotFound, "notification not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func limitFromQuery(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return notificationsListLimit, nil
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 || limit > notificationsMaxLimit {
		return 0, apiutil.FieldError{Field: "limit", Reason: "must be between 1 and 100"}
	}
	return limit, nil
}
