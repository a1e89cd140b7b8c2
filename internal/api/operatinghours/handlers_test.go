package operatinghours

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codr1/Courtbook/internal/api/authz"
	"github.com/codr1/Courtbook/internal/availability"
	"github.com/codr1/Courtbook/internal/schedule"
	"github.com/codr1/Courtbook/internal/testutil"
)

type recordingInvalidator struct {
	courts []int64
}

func (r *recordingInvalidator) Invalidate(_ context.Context, courtID int64, _ *time.Location, _ ...schedule.Interval) {
	r.courts = append(r.courts, courtID)
}

func setupOperatingHoursTest(t *testing.T) (testutil.Fixture, *recordingInvalidator) {
	t.Helper()

	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	inv := &recordingInvalidator{}

	queries = nil
	invalidator = availability.NopHooks
	queriesOnce = sync.Once{}
	InitHandlers(fx.DB.Queries, inv)

	t.Cleanup(func() {
		queries = nil
		invalidator = availability.NopHooks
		queriesOnce = sync.Once{}
	})

	return fx, inv
}

func withAuthUser(req *http.Request, id int64, role authz.Role) *http.Request {
	user := &authz.AuthUser{ID: id, Role: role}
	return req.WithContext(authz.ContextWithUser(req.Context(), user))
}

func newRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		req = httptest.NewRequest(method, target, strings.NewReader(string(payload)))
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestHandleHoursGet(t *testing.T) {
	fx, _ := setupOperatingHoursTest(t)
	testutil.InsertHoliday(t, fx.DB, fx.EstablishmentID, "2024-06-05", false, "", "", "")
	if _, err := fx.DB.ExecContext(context.Background(),
		"INSERT INTO establishment_weekday_hours (establishment_id, day_of_week, opening_time, closing_time) VALUES (?, 6, '10:00', '18:00')",
		fx.EstablishmentID); err != nil {
		t.Fatalf("seed override: %v", err)
	}

	req := newRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/establishments/%d/hours", fx.EstablishmentID), nil)
	req.SetPathValue("id", strconv.FormatInt(fx.EstablishmentID, 10))
	recorder := httptest.NewRecorder()

	HandleHoursGet(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
	}
	var view HoursView
	if err := json.NewDecoder(recorder.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(view.Days))
	}
	saturday := view.Days[6]
	if !saturday.Override || saturday.OpeningTime.String() != "10:00" || saturday.ClosingTime.String() != "18:00" {
		t.Fatalf("unexpected saturday: %+v", saturday)
	}
	if view.Days[1].Override || view.Days[1].OpeningTime.String() != "08:00" {
		t.Fatalf("unexpected monday: %+v", view.Days[1])
	}
}

func TestHandleScheduleUpdate(t *testing.T) {
	fx, _ := setupOperatingHoursTest(t)
	target := fmt.Sprintf("/api/v1/establishments/%d/hours", fx.EstablishmentID)

	tests := []struct {
		name   string
		userID int64
		role   authz.Role
		body   map[string]any
		status int
	}{
		{
			name:   "customer",
			userID: fx.CustomerID,
			role:   authz.RoleCustomer,
			body:   map[string]any{"openWeekdays": []int{1, 2}, "openingTime": "09:00", "closingTime": "17:00"},
			status: http.StatusForbidden,
		},
		{
			name:   "closing before opening",
			userID: fx.OwnerID,
			role:   authz.RoleAdmin,
			body:   map[string]any{"openWeekdays": []int{1}, "openingTime": "17:00", "closingTime": "09:00"},
			status: http.StatusBadRequest,
		},
		{
			name:   "unaligned buffer",
			userID: fx.OwnerID,
			role:   authz.RoleAdmin,
			body:   map[string]any{"openWeekdays": []int{1}, "openingTime": "09:00", "closingTime": "17:00", "bufferMinutes": 20},
			status: http.StatusBadRequest,
		},
		{
			name:   "bad weekday",
			userID: fx.OwnerID,
			role:   authz.RoleAdmin,
			body:   map[string]any{"openWeekdays": []int{7}, "openingTime": "09:00", "closingTime": "17:00"},
			status: http.StatusBadRequest,
		},
		{
			name:   "owner",
			userID: fx.OwnerID,
			role:   authz.RoleAdmin,
			body:   map[string]any{"openWeekdays": []int{1, 2, 3, 4, 5}, "openingTime": "09:00", "closingTime": "17:00", "bufferMinutes": 30},
			status: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(t, http.MethodPut, target, tt.body)
			req.SetPathValue("id", strconv.FormatInt(fx.EstablishmentID, 10))
			req = withAuthUser(req, tt.userID, tt.role)
			recorder := httptest.NewRecorder()

			HandleScheduleUpdate(recorder, req)

			if recorder.Code != tt.status {
				t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
			}
		})
	}

	est, err := fx.DB.Queries.GetEstablishmentByID(context.Background(), fx.EstablishmentID)
	if err != nil {
		t.Fatalf("load establishment: %v", err)
	}
	if est.OpenWeekdays != "1,2,3,4,5" || est.OpeningTime != "09:00" || est.BookingBufferMinutes != 30 {
		t.Fatalf("unexpected establishment: %+v", est)
	}
}

func TestHandleWeekdayHoursUpdateAndDelete(t *testing.T) {
	fx, _ := setupOperatingHoursTest(t)
	target := fmt.Sprintf("/api/v1/establishments/%d/hours/6", fx.EstablishmentID)

	req := newRequest(t, http.MethodPut, target, map[string]any{"openingTime": "10:00", "closingTime": "14:00"})
	req.SetPathValue("id", strconv.FormatInt(fx.EstablishmentID, 10))
	req.SetPathValue("day_of_week", "6")
	req = withAuthUser(req, fx.OwnerID, authz.RoleAdmin)
	recorder := httptest.NewRecorder()

	HandleWeekdayHoursUpdate(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
	}
	if got := testutil.CountRows(t, fx.DB,
		"SELECT COUNT(*) FROM establishment_weekday_hours WHERE establishment_id = ? AND day_of_week = 6 AND closing_time = '14:00'",
		fx.EstablishmentID); got != 1 {
		t.Fatalf("expected override stored, got %d", got)
	}

	for _, want := range []int{http.StatusNoContent, http.StatusNotFound} {
		req = newRequest(t, http.MethodDelete, target, nil)
		req.SetPathValue("id", strconv.FormatInt(fx.EstablishmentID, 10))
		req.SetPathValue("day_of_week", "6")
		req = withAuthUser(req, fx.OwnerID, authz.RoleAdmin)
		recorder = httptest.NewRecorder()

		HandleWeekdayHoursDelete(recorder, req)

		if recorder.Code != want {
			t.Fatalf("expected %d, got %d body: %s", want, recorder.Code, recorder.Body.String())
		}
	}
}

func TestHandleWeekdayHoursUpdate_InvalidDay(t *testing.T) {
	fx, _ := setupOperatingHoursTest(t)

	req := newRequest(t, http.MethodPut, "/api/v1/establishments/1/hours/9", map[string]any{"openingTime": "10:00", "closingTime": "14:00"})
	req.SetPathValue("id", strconv.FormatInt(fx.EstablishmentID, 10))
	req.SetPathValue("day_of_week", "9")
	req = withAuthUser(req, fx.OwnerID, authz.RoleAdmin)
	recorder := httptest.NewRecorder()

	HandleWeekdayHoursUpdate(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", recorder.Code)
	}
}

func TestHandleHolidayUpsertInvalidatesCourts(t *testing.T) {
	fx, inv := setupOperatingHoursTest(t)
	target := fmt.Sprintf("/api/v1/establishments/%d/holidays/2024-12-25", fx.EstablishmentID)

	req := newRequest(t, http.MethodPut, target, map[string]any{"isOpen": false, "note": "Christmas"})
	req.SetPathValue("id", strconv.FormatInt(fx.EstablishmentID, 10))
	req.SetPathValue("date", "2024-12-25")
	req = withAuthUser(req, fx.OwnerID, authz.RoleAdmin)
	recorder := httptest.NewRecorder()

	HandleHolidayUpsert(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
	}
	var day CalendarDayView
	if err := json.NewDecoder(recorder.Body).Decode(&day); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !day.IsClosed || day.Notice != "Closed: Christmas" {
		t.Fatalf("unexpected day: %+v", day)
	}
	if len(inv.courts) != 1 || inv.courts[0] != fx.CourtID {
		t.Fatalf("expected court %d invalidated, got %v", fx.CourtID, inv.courts)
	}

	req = newRequest(t, http.MethodDelete, target, nil)
	req.SetPathValue("id", strconv.FormatInt(fx.EstablishmentID, 10))
	req.SetPathValue("date", "2024-12-25")
	req = withAuthUser(req, fx.OwnerID, authz.RoleAdmin)
	recorder = httptest.NewRecorder()

	HandleHolidayDelete(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("delete status: %d", recorder.Code)
	}
	if len(inv.courts) != 2 {
		t.Fatalf("expected a second invalidation, got %v", inv.courts)
	}
}

func TestHandleCalendarDay(t *testing.T) {
	fx, _ := setupOperatingHoursTest(t)
	testutil.InsertHoliday(t, fx.DB, fx.EstablishmentID, "2024-06-05", true, "12:00", "16:00", "Tournament")

	tests := []struct {
		date    string
		closed  bool
		opening string
		notice  string
	}{
		{date: "2024-06-04", opening: "08:00"},
		{date: "2024-06-05", opening: "12:00", notice: "Special hours: Tournament"},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			req := newRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/establishments/%d/calendar?date=%s", fx.EstablishmentID, tt.date), nil)
			req.SetPathValue("id", strconv.FormatInt(fx.EstablishmentID, 10))
			recorder := httptest.NewRecorder()

			HandleCalendarDay(recorder, req)

			if recorder.Code != http.StatusOK {
				t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
			}
			var day CalendarDayView
			if err := json.NewDecoder(recorder.Body).Decode(&day); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if day.IsClosed != tt.closed || day.OpeningTime != tt.opening || day.Notice != tt.notice {
				t.Fatalf("unexpected day: %+v", day)
			}
		})
	}
}
