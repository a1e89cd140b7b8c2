// internal/api/bookings/handlers.go
package bookings

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/api/apiutil"
	"github.com/codr1/Courtbook/internal/booking"
	dbgen "github.com/codr1/Courtbook/internal/db/generated"
)

var (
	engine     *booking.Engine
	settings   booking.Settings
	engineOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(e *booking.Engine, s booking.Settings) {
	if e == nil {
		return
	}
	engineOnce.Do(func() {
		engine = e
		settings = s
	})
}

type createRequest struct {
	CourtID     int64  `json:"courtId"`
	Start       string `json:"start"`
	End         string `json:"end"`
	RepeatWeeks int    `json:"repeatWeeks"`
	PayAtCourt  bool   `json:"payAtCourt"`
}

type BookingView struct {
	ID              int64     `json:"id"`
	CourtID         int64     `json:"courtId"`
	CustomerUserID  int64     `json:"customerUserId"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Status          string    `json:"status"`
	TotalPriceCents int64     `json:"totalPriceCents"`
	PayAtCourt      bool      `json:"payAtCourt"`
	SeriesID        string    `json:"seriesId,omitempty"`
}

func bookingView(b dbgen.Booking) BookingView {
	return BookingView{
		ID:              b.ID,
		CourtID:         b.CourtID,
		CustomerUserID:  b.CustomerUserID,
		Start:           b.StartTime,
		End:             b.EndTime,
		Status:          b.Status,
		TotalPriceCents: b.TotalPriceCents,
		PayAtCourt:      b.PayAtCourt,
		SeriesID:        b.SeriesID.String,
	}
}

func ready(w http.ResponseWriter, r *http.Request) bool {
	if engine == nil {
		log.Ctx(r.Context()).Error().Msg("Booking engine not initialized")
		apiutil.WriteErrorMessage(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	return true
}

// POST /api/v1/bookings
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	user, ok := apiutil.RequireUser(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "body", Reason: err.Error()})
		return
	}
	if req.CourtID <= 0 {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "courtId", Reason: "is required"})
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

	result, err := engine.Create(r.Context(), settings, user, booking.Request{
		CourtID:     req.CourtID,
		Start:       start,
		End:         end,
		RepeatWeeks: req.RepeatWeeks,
		PayAtCourt:  req.PayAtCourt,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusCreated, result)
}

// POST /api/v1/bookings/{id}/confirm
func HandleConfirm(w http.ResponseWriter, r *http.Request) {
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
	confirmed, err := engine.Confirm(r.Context(), user, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, bookingView(confirmed))
}

// POST /api/v1/bookings/{id}/cancel
func HandleCancel(w http.ResponseWriter, r *http.Request) {
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
	cancelled, err := engine.Cancel(r.Context(), user, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, bookingView(cancelled))
}
