package bookings

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/codr1/Courtbook/internal/api/apiutil"
	"github.com/codr1/Courtbook/internal/api/authz"
	"github.com/codr1/Courtbook/internal/booking"
	"github.com/codr1/Courtbook/internal/testutil"
)

func setupBookingHandlers(t *testing.T) testutil.Fixture {
	t.Helper()

	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{RequiresConfirmation: true})
	e, err := booking.NewEngine(fx.DB, booking.WithClock(testutil.FixedClock{At: testutil.UTCTime(t, "2024-06-01 09:00")}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	engine = nil
	settings = booking.Settings{}
	engineOnce = sync.Once{}
	InitHandlers(e, booking.Settings{})

	t.Cleanup(func() {
		engine = nil
		settings = booking.Settings{}
		engineOnce = sync.Once{}
	})
	return fx
}

func withUser(req *http.Request, id int64, role authz.Role) *http.Request {
	return req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: id, Role: role}))
}

func postCreate(t *testing.T, userID int64, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req = withUser(req, userID, authz.RoleCustomer)
	}
	recorder := httptest.NewRecorder()
	HandleCreate(recorder, req)
	return recorder
}

func TestHandleCreate(t *testing.T) {
	fx := setupBookingHandlers(t)
	court := strconv.FormatInt(fx.CourtID, 10)
	valid := `{"courtId":` + court + `,"start":"2024-06-03T10:00:00Z","end":"2024-06-03T11:30:00Z","repeatWeeks":1}`

	recorder := postCreate(t, fx.CustomerID, valid)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
	}
	var result booking.Result
	if err := json.NewDecoder(recorder.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.IDs) != 2 || result.Status != booking.StatusPending || result.SeriesID == "" {
		t.Fatalf("unexpected result: %+v", result)
	}

	tests := []struct {
		name   string
		userID int64
		body   string
		status int
		kind   string
		date   string
	}{
		{name: "anonymous", body: valid, status: http.StatusUnauthorized},
		{name: "unknown field", userID: fx.OtherCustomerID, body: `{"courtId":1,"bogus":true}`, status: http.StatusBadRequest, kind: "VALIDATION"},
		{name: "bad timestamp", userID: fx.OtherCustomerID, body: `{"courtId":` + court + `,"start":"2024-06-03 10:00","end":"2024-06-03T11:00:00Z"}`, status: http.StatusBadRequest, kind: "VALIDATION"},
		{
			name:   "second week taken",
			userID: fx.OtherCustomerID,
			body:   `{"courtId":` + court + `,"start":"2024-06-10T11:00:00Z","end":"2024-06-10T12:00:00Z"}`,
			status: http.StatusConflict,
			kind:   "OVERLAP_BOOKING",
			date:   "2024-06-10",
		},
		{
			name:   "after closing",
			userID: fx.OtherCustomerID,
			body:   `{"courtId":` + court + `,"start":"2024-06-04T21:30:00Z","end":"2024-06-04T22:30:00Z"}`,
			status: http.StatusUnprocessableEntity,
			kind:   "OUT_OF_HOURS",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := postCreate(t, tt.userID, tt.body)
			if recorder.Code != tt.status {
				t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
			}
			var body apiutil.ErrorBody
			if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Kind != tt.kind {
				t.Fatalf("expected kind %q, got %+v", tt.kind, body)
			}
			if tt.date != "" && body.Date != tt.date {
				t.Fatalf("expected date %s, got %+v", tt.date, body)
			}
		})
	}
}

func TestHandleConfirmAndCancel(t *testing.T) {
	fx := setupBookingHandlers(t)
	id := testutil.InsertBooking(t, fx.DB, fx.CourtID, fx.CustomerID,
		testutil.UTCTime(t, "2024-06-03 10:00"), testutil.UTCTime(t, "2024-06-03 11:00"), booking.StatusPending)
	idStr := strconv.FormatInt(id, 10)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+idStr+"/confirm", nil)
	req.SetPathValue("id", idStr)
	req = withUser(req, fx.CustomerID, authz.RoleCustomer)
	recorder := httptest.NewRecorder()
	HandleConfirm(recorder, req)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("customer confirm status: %d", recorder.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+idStr+"/confirm", nil)
	req.SetPathValue("id", idStr)
	req = withUser(req, fx.OwnerID, authz.RoleAdmin)
	recorder = httptest.NewRecorder()
	HandleConfirm(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("owner confirm status: %d body: %s", recorder.Code, recorder.Body.String())
	}
	var view BookingView
	if err := json.NewDecoder(recorder.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Status != booking.StatusConfirmed || view.ID != id {
		t.Fatalf("unexpected view: %+v", view)
	}

	for _, want := range []int{http.StatusOK, http.StatusConflict} {
		req = httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+idStr+"/cancel", nil)
		req.SetPathValue("id", idStr)
		req = withUser(req, fx.CustomerID, authz.RoleCustomer)
		recorder = httptest.NewRecorder()
		HandleCancel(recorder, req)
		if recorder.Code != want {
			t.Fatalf("cancel: expected %d, got %d body: %s", want, recorder.Code, recorder.Body.String())
		}
	}
}

func TestHandlersRequireEngine(t *testing.T) {
	engine = nil
	engineOnce = sync.Once{}

	recorder := httptest.NewRecorder()
	HandleCreate(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil))
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status: %d", recorder.Code)
	}
}
