// internal/api/blocks/handlers.go
package blocks

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/api/apiutil"
	"github.com/codr1/Courtbook/internal/blocks"
	"github.com/codr1/Courtbook/internal/schedule"
)

var (
	engine     *blocks.Engine
	engineOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(e *blocks.Engine) {
	if e == nil {
		return
	}
	engineOnce.Do(func() {
		engine = e
	})
}

type createRequest struct {
	CourtID     int64  `json:"courtId"`
	Start       string `json:"start"`
	End         string `json:"end"`
	RepeatWeeks int    `json:"repeatWeeks"`
	Note        string `json:"note"`
}

type seriesRequest struct {
	CourtID   int64              `json:"courtId"`
	StartDate schedule.LocalDate `json:"startDate"`
	EndDate   schedule.LocalDate `json:"endDate"`
	Weekdays  []int              `json:"weekdays"`
	StartTime schedule.TimeOfDay `json:"startTime"`
	EndTime   schedule.TimeOfDay `json:"endTime"`
	Note      string             `json:"note"`
}

func ready(w http.ResponseWriter, r *http.Request) bool {
	if engine == nil {
		log.Ctx(r.Context()).Error().Msg("Block engine not initialized")
		apiutil.WriteErrorMessage(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	return true
}

// POST /api/v1/blocks
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

	result, err := engine.Create(r.Context(), user, blocks.Request{
		CourtID:     req.CourtID,
		Start:       start,
		End:         end,
		RepeatWeeks: req.RepeatWeeks,
		Note:        req.Note,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusCreated, result)
}

// POST /api/v1/blocks/series
func HandleCreateSeries(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	user, ok := apiutil.RequireUser(w, r)
	if !ok {
		return
	}
	var req seriesRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "body", Reason: err.Error()})
		return
	}
	weekdays := make([]time.Weekday, 0, len(req.Weekdays))
	for _, wd := range req.Weekdays {
		weekdays = append(weekdays, time.Weekday(wd))
	}

	result, err := engine.CreateSeries(r.Context(), user, blocks.SeriesRequest{
		CourtID:   req.CourtID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Weekdays:  weekdays,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Note:      req.Note,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusCreated, result)
}

// DELETE /api/v1/blocks/{id}
func HandleDelete(w http.ResponseWriter, r *http.Request) {
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
	if err := engine.Delete(r.Context(), user, id); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
