// internal/api/courts/handlers.go
package courts

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/api/apiutil"
	"github.com/codr1/Courtbook/internal/api/authz"
	"github.com/codr1/Courtbook/internal/availability"
	dbgen "github.com/codr1/Courtbook/internal/db/generated"
	"github.com/codr1/Courtbook/internal/schedule"
)

var (
	queries     *dbgen.Queries
	service     *availability.Service
	queriesOnce sync.Once
)

const (
	courtsQueryTimeout = 5 * time.Second
	maxMonthlyTerms    = 2000
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *dbgen.Queries, svc *availability.Service) {
	if q == nil || svc == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
		service = svc
	})
}

// GET /api/v1/courts/{id}/availability?date=YYYY-MM-DD
func HandleAvailability(w http.ResponseWriter, r *http.Request) {
	if service == nil {
		log.Ctx(r.Context()).Error().Msg("Availability service not initialized")
		apiutil.WriteErrorMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	courtID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	date, err := apiutil.DateFromQuery(r, "date")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	view, err := service.DayAvailability(ctx, courtID, date)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, view)
}

type slotsResponse struct {
	CourtID         int64               `json:"courtId"`
	Date            schedule.LocalDate  `json:"date"`
	DurationMinutes int64               `json:"durationMinutes"`
	Slots           []availability.Slot `json:"slots"`
}

// GET /api/v1/courts/{id}/slots?date=YYYY-MM-DD&duration=60
func HandleSlots(w http.ResponseWriter, r *http.Request) {
	if service == nil {
		log.Ctx(r.Context()).Error().Msg("Availability service not initialized")
		apiutil.WriteErrorMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	courtID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	date, err := apiutil.DateFromQuery(r, "date")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	duration, err := apiutil.DurationMinutesFromQuery(r, "duration")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	slots, err := service.Slots(ctx, courtID, date, duration)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, slotsResponse{
		CourtID:         courtID,
		Date:            date,
		DurationMinutes: int64(duration / time.Minute),
		Slots:           slots,
	})
}

type courtUpdateRequest struct {
	IsActive                 *bool   `json:"isActive"`
	PricePerHourCents        *int64  `json:"pricePerHourCents"`
	DiscountOver90MinPercent *int64  `json:"discountOver90MinPercent"`
	MonthlyPriceCents        *int64  `json:"monthlyPriceCents"`
	ClearMonthlyPrice        bool    `json:"clearMonthlyPrice"`
	MonthlyTerms             *string `json:"monthlyTerms"`
}

type CourtView struct {
	ID                       int64  `json:"id"`
	EstablishmentID          int64  `json:"establishmentId"`
	Name                     string `json:"name"`
	IsActive                 bool   `json:"isActive"`
	PricePerHourCents        int64  `json:"pricePerHourCents"`
	DiscountOver90MinPercent int64  `json:"discountOver90MinPercent"`
	MonthlyPriceCents        *int64 `json:"monthlyPriceCents,omitempty"`
	MonthlyTerms             string `json:"monthlyTerms,omitempty"`
}

func courtView(c dbgen.Court) CourtView {
	view := CourtView{
		ID:                       c.ID,
		EstablishmentID:          c.EstablishmentID,
		Name:                     c.Name,
		IsActive:                 c.IsActive,
		PricePerHourCents:        c.PricePerHourCents,
		DiscountOver90MinPercent: c.DiscountOver90MinPercent,
		MonthlyTerms:             c.MonthlyTerms.String,
	}
	if c.MonthlyPriceCents.Valid {
		price := c.MonthlyPriceCents.Int64
		view.MonthlyPriceCents = &price
	}
	return view
}

// PATCH /api/v1/courts/{id}
func HandleCourtUpdate(w http.ResponseWriter, r *http.Request) {
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
	courtID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req courtUpdateRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "body", Reason: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	court, err := queries.GetCourtByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, r, schedule.Errorf(schedule.KindNotFound, "court not found"))
			return
		}
		apiutil.WriteError(w, r, err)
		return
	}
	est, err := queries.GetEstablishmentByID(ctx, court.EstablishmentID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if !authz.CanManageEstablishment(&user, est.OwnerUserID) {
		apiutil.WriteError(w, r, schedule.Errorf(schedule.KindPermission, "Only the court owner can update courts"))
		return
	}

	params, err := applyCourtUpdate(court, req)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	updated, err := queries.UpdateCourt(ctx, params)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	logger.Info().Int64("court_id", courtID).Bool("is_active", updated.IsActive).Msg("Court updated")
	_ = apiutil.WriteJSON(w, http.StatusOK, courtView(updated))
}

func applyCourtUpdate(court dbgen.Court, req courtUpdateRequest) (dbgen.UpdateCourtParams, error) {
	params := dbgen.UpdateCourtParams{
		ID:                       court.ID,
		IsActive:                 court.IsActive,
		PricePerHourCents:        court.PricePerHourCents,
		DiscountOver90MinPercent: court.DiscountOver90MinPercent,
		MonthlyPriceCents:        court.MonthlyPriceCents,
		MonthlyTerms:             court.MonthlyTerms,
	}
	if req.IsActive != nil {
		params.IsActive = *req.IsActive
	}
	if req.PricePerHourCents != nil {
		if *req.PricePerHourCents < 0 {
			return params, apiutil.FieldError{Field: "pricePerHourCents", Reason: "must be 0 or greater"}
		}
		params.PricePerHourCents = *req.PricePerHourCents
	}
	if req.DiscountOver90MinPercent != nil {
		if *req.DiscountOver90MinPercent < 0 || *req.DiscountOver90MinPercent > 100 {
			return params, apiutil.FieldError{Field: "discountOver90MinPercent", Reason: "must be between 0 and 100"}
		}
		params.DiscountOver90MinPercent = *req.DiscountOver90MinPercent
	}
	if req.ClearMonthlyPrice {
		params.MonthlyPriceCents = sql.NullInt64{}
	} else if req.MonthlyPriceCents != nil {
		if *req.MonthlyPriceCents <= 0 {
			return params, apiutil.FieldError{Field: "monthlyPriceCents", Reason: "must be greater than 0"}
		}
		params.MonthlyPriceCents = apiutil.ToNullInt64(req.MonthlyPriceCents)
	}
	if req.MonthlyTerms != nil {
		if len(strings.TrimSpace(*req.MonthlyTerms)) > maxMonthlyTerms {
			return params, apiutil.FieldError{Field: "monthlyTerms", Reason: "is too long"}
		}
		params.MonthlyTerms = apiutil.ToNullString(req.MonthlyTerms)
	}
	return params, nil
}
