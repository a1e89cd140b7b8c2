// internal/api/alerts/handlers.go
package alerts

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/alerts"
	"github.com/codr1/Courtbook/internal/api/apiutil"
	dbgen "github.com/codr1/Courtbook/internal/db/generated"
	"github.com/codr1/Courtbook/internal/schedule"
)

var (
	service     *alerts.Service
	serviceOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *alerts.Service) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
	})
}

type registerRequest struct {
	CourtID int64  `json:"courtId"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type AlertView struct {
	ID         int64      `json:"id"`
	CourtID    int64      `json:"courtId"`
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"`
	IsActive   bool       `json:"isActive"`
	NotifiedAt *time.Time `json:"notifiedAt,omitempty"`
}

func alertView(a dbgen.AvailabilityAlert) AlertView {
	view := AlertView{
		ID:       a.ID,
		CourtID:  a.CourtID,
		Start:    a.StartTime,
		End:      a.EndTime,
		IsActive: a.IsActive,
	}
	if a.NotifiedAt.Valid {
		at := a.NotifiedAt.Time
		view.NotifiedAt = &at
	}
	return view
}

func ready(w http.ResponseWriter, r *http.Request) bool {
	if service == nil {
		log.Ctx(r.Context()).Error().Msg("Alert service not initialized")
		apiutil.WriteErrorMessage(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	return true
}

// POST /api/v1/alerts
func HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	user, ok := apiutil.RequireUser(w, r)
	if !ok {
		return
	}
	var req registerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "body", Reason: err.Error()})
		return
	}
	start, err := apiutil.ParseTimestamp(req.Start, "start")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	end, err := apiutil.ParseTimestamp(req.End, "end")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	alert, err := service.Register(r.Context(), user, req.CourtID, schedule.NewInterval(start, end))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusCreated, alertView(alert))
}

// GET /api/v1/alerts
func HandleList(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	user, ok := apiutil.RequireUser(w, r)
	if !ok {
		return
	}
	list, err := service.List(r.Context(), user)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	views := make([]AlertView, 0, len(list))
	for _, a := range list {
		views = append(views, alertView(a))
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]any{"alerts": views})
}

// DELETE /api/v1/alerts/{id}
func HandleDeactivate(w http.ResponseWriter, r *http.Request) {
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
	if err := service.Deactivate(r.Context(), user, id); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
