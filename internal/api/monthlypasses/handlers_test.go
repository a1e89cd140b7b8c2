package monthlypasses

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/codr1/Courtbook/internal/api/authz"
	"github.com/codr1/Courtbook/internal/monthlypass"
	"github.com/codr1/Courtbook/internal/testutil"
)

func setupPassHandlers(t *testing.T) testutil.Fixture {
	t.Helper()

	fx := testutil.NewFixture(t, testutil.EstablishmentOptions{})
	e, err := monthlypass.NewEngine(fx.DB, monthlypass.WithClock(testutil.FixedClock{At: testutil.UTCTime(t, "2024-06-25 09:00")}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	engine = nil
	engineOnce = sync.Once{}
	InitHandlers(e)

	t.Cleanup(func() {
		engine = nil
		engineOnce = sync.Once{}
	})
	return fx
}

func withUser(req *http.Request, id int64, role authz.Role) *http.Request {
	return req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: id, Role: role}))
}

func request(t *testing.T, fx testutil.Fixture, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/monthly-passes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	HandleRequest(recorder, withUser(req, fx.CustomerID, authz.RoleCustomer))
	return recorder
}

func decodePass(t *testing.T, recorder *httptest.ResponseRecorder) PassView {
	t.Helper()

	var view PassView
	if err := json.NewDecoder(recorder.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return view
}

func TestPassLifecycleOverHTTP(t *testing.T) {
	fx := setupPassHandlers(t)
	body := fmt.Sprintf(`{"courtId":%d,"month":"2024-07","weekday":1,"startTime":"18:00","endTime":"19:00"}`, fx.CourtID)

	recorder := request(t, fx, body)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("request status: %d body: %s", recorder.Code, recorder.Body.String())
	}
	pass := decodePass(t, recorder)
	if pass.Status != monthlypass.StatusPending || pass.Month != "2024-07" || pass.PriceCents != 8000 {
		t.Fatalf("unexpected pass: %+v", pass)
	}

	recorder = request(t, fx, body)
	if again := decodePass(t, recorder); again.ID != pass.ID {
		t.Fatalf("expected idempotent request, got %d and %d", pass.ID, again.ID)
	}

	idStr := strconv.FormatInt(pass.ID, 10)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/monthly-passes/"+idStr+"/confirm", nil)
	req.SetPathValue("id", idStr)
	recorder = httptest.NewRecorder()
	HandleConfirm(recorder, withUser(req, fx.OwnerID, authz.RoleAdmin))
	if recorder.Code != http.StatusOK {
		t.Fatalf("confirm status: %d body: %s", recorder.Code, recorder.Body.String())
	}
	if confirmed := decodePass(t, recorder); confirmed.Status != monthlypass.StatusActive || confirmed.MaterializedAt == nil {
		t.Fatalf("unexpected confirmed pass: %+v", confirmed)
	}

	recorder = request(t, fx, body)
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409 for an active pass, got %d", recorder.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/monthly-passes/"+idStr+"/cancel", nil)
	req.SetPathValue("id", idStr)
	recorder = httptest.NewRecorder()
	HandleCancel(recorder, withUser(req, fx.CustomerID, authz.RoleCustomer))
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409 cancelling an active pass, got %d", recorder.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/monthly-passes/"+idStr, nil)
	req.SetPathValue("id", idStr)
	recorder = httptest.NewRecorder()
	HandleGet(recorder, withUser(req, fx.OtherCustomerID, authz.RoleCustomer))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another customer, got %d", recorder.Code)
	}
}

func TestHandleRequestValidation(t *testing.T) {
	fx := setupPassHandlers(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "missing weekday", body: fmt.Sprintf(`{"courtId":%d,"month":"2024-07","startTime":"18:00","endTime":"19:00"}`, fx.CourtID), status: http.StatusBadRequest},
		{name: "bad month", body: fmt.Sprintf(`{"courtId":%d,"month":"July","weekday":1,"startTime":"18:00","endTime":"19:00"}`, fx.CourtID), status: http.StatusBadRequest},
		{name: "too far ahead", body: fmt.Sprintf(`{"courtId":%d,"month":"2024-09","weekday":1,"startTime":"18:00","endTime":"19:00"}`, fx.CourtID), status: http.StatusBadRequest},
		{name: "after closing", body: fmt.Sprintf(`{"courtId":%d,"month":"2024-07","weekday":1,"startTime":"21:30","endTime":"22:30"}`, fx.CourtID), status: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := request(t, fx, tt.body)
			if recorder.Code != tt.status {
				t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestHandleList(t *testing.T) {
	fx := setupPassHandlers(t)
	testutil.InsertMonthlyPass(t, fx.DB, fx.CourtID, fx.CustomerID, "2024-07", 1, "18:00", "19:00", monthlypass.StatusPending)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/monthly-passes?court_id=%d&month=2024-07", fx.CourtID), nil)
	recorder := httptest.NewRecorder()
	HandleList(recorder, withUser(req, fx.OwnerID, authz.RoleAdmin))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", recorder.Code, recorder.Body.String())
	}
	var body struct {
		Passes []PassView `json:"passes"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Passes) != 1 || body.Passes[0].CustomerUserID != fx.CustomerID {
		t.Fatalf("unexpected passes: %+v", body.Passes)
	}

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/monthly-passes?court_id=%d", fx.CourtID), nil)
	recorder = httptest.NewRecorder()
	HandleList(recorder, withUser(req, fx.OwnerID, authz.RoleAdmin))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without month, got %d", recorder.Code)
	}
}
