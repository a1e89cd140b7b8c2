// internal/api/monthlypasses/handlers.go
package monthlypasses

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/api/apiutil"
	"github.com/codr1/Courtbook/internal/api/authz"
	dbgen "github.com/codr1/Courtbook/internal/db/generated"
	"github.com/codr1/Courtbook/internal/monthlypass"
	"github.com/codr1/Courtbook/internal/schedule"
)

var (
	engine     *monthlypass.Engine
	engineOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(e *monthlypass.Engine) {
	if e == nil {
		return
	}
	engineOnce.Do(func() {
		engine = e
	})
}

type requestBody struct {
	CourtID   int64              `json:"courtId"`
	Month     schedule.Month     `json:"month"`
	Weekday   *int               `json:"weekday"`
	StartTime schedule.TimeOfDay `json:"startTime"`
	EndTime   schedule.TimeOfDay `json:"endTime"`
}

type PassView struct {
	ID             int64      `json:"id"`
	CourtID        int64      `json:"courtId"`
	CustomerUserID int64      `json:"customerUserId"`
	Month          string     `json:"month"`
	Weekday        int64      `json:"weekday"`
	StartTime      string     `json:"startTime"`
	EndTime        string     `json:"endTime"`
	Status         string     `json:"status"`
	PriceCents     int64      `json:"priceCents"`
	Terms          string     `json:"terms"`
	MaterializedAt *time.Time `json:"materializedAt,omitempty"`
}

func passView(p dbgen.MonthlyPass) PassView {
	view := PassView{
		ID:             p.ID,
		CourtID:        p.CourtID,
		CustomerUserID: p.CustomerUserID,
		Month:          p.Month,
		Weekday:        p.Weekday,
		StartTime:      p.StartTime,
		EndTime:        p.EndTime,
		Status:         p.Status,
		PriceCents:     p.PriceCents,
		Terms:          p.TermsSnapshot,
	}
	if p.MaterializedAt.Valid {
		at := p.MaterializedAt.Time
		view.MaterializedAt = &at
	}
	return view
}

func ready(w http.ResponseWriter, r *http.Request) bool {
	if engine == nil {
		log.Ctx(r.Context()).Error().Msg("Monthly pass engine not initialized")
		apiutil.WriteErrorMessage(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	return true
}

// POST /api/v1/monthly-passes
func HandleRequest(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	user, ok := apiutil.RequireUser(w, r)
	if !ok {
		return
	}
	var body requestBody
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "body", Reason: err.Error()})
		return
	}
	if body.Weekday == nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "weekday", Reason: "is required"})
		return
	}

	pass, err := engine.Request(r.Context(), user, monthlypass.Request{
		CourtID:   body.CourtID,
		Month:     body.Month,
		Weekday:   time.Weekday(*body.Weekday),
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusCreated, passView(pass))
}

// GET /api/v1/monthly-passes?court_id=&month=
func HandleList(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	user, ok := apiutil.RequireUser(w, r)
	if !ok {
		return
	}
	courtID, err := apiutil.OptionalQueryID(r, "court_id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	month, err := apiutil.OptionalMonthFromQuery(r, "month")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	passes, err := engine.List(r.Context(), user, courtID, month)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	views := make([]PassView, 0, len(passes))
	for _, p := range passes {
		views = append(views, passView(p))
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]any{"passes": views})
}

// GET /api/v1/monthly-passes/{id}
func HandleGet(w http.ResponseWriter, r *http.Request) {
	withPass(w, r, http.StatusOK, func(ctx context.Context, user authz.AuthUser, id int64) (dbgen.MonthlyPass, error) {
		return engine.Get(ctx, user, id)
	})
}

// POST /api/v1/monthly-passes/{id}/confirm
func HandleConfirm(w http.ResponseWriter, r *http.Request) {
	withPass(w, r, http.StatusOK, func(ctx context.Context, user authz.AuthUser, id int64) (dbgen.MonthlyPass, error) {
		return engine.Confirm(ctx, user, id)
	})
}

// POST /api/v1/monthly-passes/{id}/cancel
func HandleCancel(w http.ResponseWriter, r *http.Request) {
	withPass(w, r, http.StatusOK, func(ctx context.Context, user authz.AuthUser, id int64) (dbgen.MonthlyPass, error) {
		return engine.Cancel(ctx, user, id)
	})
}

func withPass(w http.ResponseWriter, r *http.Request, status int, op func(context.Context, authz.AuthUser, int64) (dbgen.MonthlyPass, error)) {
	if !ready(w, r) {
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
	pass, err := op(r.Context(), user, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, status, passView(pass))
}
