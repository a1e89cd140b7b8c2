package notifications

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/codr1/Courtbook/internal/api/authz"
	dbgen "github.com/codr1/Courtbook/internal/db/generated"
	"github.com/codr1/Courtbook/internal/schedule"
	"github.com/codr1/Courtbook/internal/testutil"
)

func setupNotificationsTest(t *testing.T) testutil.Fixture {
	t.Helper()

	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})

	queries = nil
	clock = schedule.SystemClock
	queriesOnce = sync.Once{}
	InitHandlers(fx.DB.Queries, testutil.FixedClock{At: testutil.UTCTime(t, "2024-06-01 09:00")})

	t.Cleanup(func() {
		queries = nil
		clock = schedule.SystemClock
		queriesOnce = sync.Once{}
	})
	return fx
}

func withUser(req *http.Request, id int64) *http.Request {
	return req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: id, Role: authz.RoleCustomer}))
}

func TestNotificationsListAndRead(t *testing.T) {
	fx := setupNotificationsTest(t)
	ctx := context.Background()
	created, err := fx.DB.Queries.CreateNotification(ctx, dbgen.CreateNotificationParams{
		UserID:    fx.CustomerID,
		Kind:      "booking.created",
		Payload:   `{"bookingIds":[1]}`,
		CreatedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}

	recorder := httptest.NewRecorder()
	HandleNotificationsList(recorder, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil), fx.CustomerID))
	if recorder.Code != http.StatusOK {
		t.Fatalf("list status: %d", recorder.Code)
	}
	var body struct {
		Notifications []NotificationView `json:"notifications"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Notifications) != 1 || body.Notifications[0].Read || string(body.Notifications[0].Payload) != `{"bookingIds":[1]}` {
		t.Fatalf("unexpected notifications: %+v", body.Notifications)
	}

	idStr := strconv.FormatInt(created.ID, 10)
	tests := []struct {
		userID int64
		want   int
	}{
		{userID: fx.OtherCustomerID, want: http.StatusNotFound},
		{userID: fx.CustomerID, want: http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+idStr+"/read", nil)
		req.SetPathValue("id", idStr)
		recorder = httptest.NewRecorder()
		HandleNotificationRead(recorder, withUser(req, tt.userID))
		if recorder.Code != tt.want {
			t.Fatalf("user %d: expected %d, got %d", tt.userID, tt.want, recorder.Code)
		}
	}
}

func TestNotificationsListLimit(t *testing.T) {
	setupNotificationsTest(t)

	recorder := httptest.NewRecorder()
	HandleNotificationsList(recorder, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=500", nil), 1))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	HandleNotificationsList(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status: %d", recorder.Code)
	}
}
