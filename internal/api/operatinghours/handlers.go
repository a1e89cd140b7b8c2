// internal/api/operatinghours/handlers.go
package operatinghours

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/api/apiutil"
	"github.com/codr1/Courtbook/internal/api/authz"
	"github.com/codr1/Courtbook/internal/availability"
	"github.com/codr1/Courtbook/internal/calendar"
	dbgen "github.com/codr1/Courtbook/internal/db/generated"
	"github.com/codr1/Courtbook/internal/schedule"
)

const (
	operatingHoursQueryTimeout = 5 * time.Second
	dayOfWeekParam             = "day_of_week"
	dateParam                  = "date"
	maxBufferMinutes           = 240
	maxHolidayNote             = 200
)

var (
	queries     *dbgen.Queries
	invalidator availability.Invalidator = availability.NopHooks
	queriesOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
// inv may be nil when no read-model cache is configured.
func InitHandlers(q *dbgen.Queries, inv availability.Invalidator) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
		if inv != nil {
			invalidator = inv
		}
	})
}

type scheduleRequest struct {
	OpenWeekdays         []int              `json:"openWeekdays"`
	OpeningTime          schedule.TimeOfDay `json:"openingTime"`
	ClosingTime          schedule.TimeOfDay `json:"closingTime"`
	BufferMinutes        int64              `json:"bufferMinutes"`
	RequiresPayment      bool               `json:"requiresPayment"`
	RequiresConfirmation bool               `json:"requiresConfirmation"`
}

type weekdayHoursRequest struct {
	OpeningTime schedule.TimeOfDay `json:"openingTime"`
	ClosingTime schedule.TimeOfDay `json:"closingTime"`
}

type holidayRequest struct {
	IsOpen      bool                `json:"isOpen"`
	OpeningTime *schedule.TimeOfDay `json:"openingTime"`
	ClosingTime *schedule.TimeOfDay `json:"closingTime"`
	Note        string              `json:"note"`
}

type DayHoursView struct {
	DayOfWeek   int                `json:"dayOfWeek"`
	IsClosed    bool               `json:"isClosed"`
	OpeningTime schedule.TimeOfDay `json:"openingTime"`
	ClosingTime schedule.TimeOfDay `json:"closingTime"`
	Override    bool               `json:"override"`
}

type HoursView struct {
	EstablishmentID      int64          `json:"establishmentId"`
	Timezone             string         `json:"timezone"`
	BufferMinutes        int64          `json:"bufferMinutes"`
	RequiresPayment      bool           `json:"requiresPayment"`
	RequiresConfirmation bool           `json:"requiresConfirmation"`
	Days                 []DayHoursView `json:"days"`
}

type CalendarDayView struct {
	Date        schedule.LocalDate `json:"date"`
	IsClosed    bool               `json:"isClosed"`
	OpeningTime string             `json:"openingTime,omitempty"`
	ClosingTime string             `json:"closingTime,omitempty"`
	Notice      string             `json:"notice,omitempty"`
}

func hoursView(est dbgen.Establishment, rules calendar.Rules) HoursView {
	days := make([]DayHoursView, 0, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		hours, open := rules.HoursFor(day)
		_, override := rules.Overrides[day]
		days = append(days, DayHoursView{
			DayOfWeek:   int(day),
			IsClosed:    !open,
			OpeningTime: hours.Opening,
			ClosingTime: hours.Closing,
			Override:    override,
		})
	}
	return HoursView{
		EstablishmentID:      est.ID,
		Timezone:             est.Timezone,
		BufferMinutes:        est.BookingBufferMinutes,
		RequiresPayment:      est.RequiresPayment,
		RequiresConfirmation: est.RequiresConfirmation,
		Days:                 days,
	}
}

func calendarDayView(day calendar.Day) CalendarDayView {
	view := CalendarDayView{Date: day.Date, IsClosed: day.IsClosed, Notice: day.Notice}
	if !day.IsClosed {
		view.OpeningTime = day.Opening.String()
		view.ClosingTime = day.Closing.String()
	}
	return view
}

// GET /api/v1/establishments/{id}/hours
func HandleHoursGet(w http.ResponseWriter, r *http.Request) {
	q, ok := loadQueries(w, r)
	if !ok {
		return
	}
	establishmentID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), operatingHoursQueryTimeout)
	defer cancel()

	cal, err := calendar.NewResolver(q).Load(ctx, establishmentID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, hoursView(cal.Establishment, cal.Rules))
}

// PUT /api/v1/establishments/{id}/hours
func HandleScheduleUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	q, ok := loadQueries(w, r)
	if !ok {
		return
	}
	var req scheduleRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "body", Reason: err.Error()})
		return
	}
	weekdays, err := parseWeekdays(req.OpenWeekdays)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if !req.ClosingTime.After(req.OpeningTime) {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "closingTime", Reason: "must be after openingTime"})
		return
	}
	slotMinutes := int64(schedule.SlotStep / time.Minute)
	if req.BufferMinutes < 0 || req.BufferMinutes > maxBufferMinutes || req.BufferMinutes%slotMinutes != 0 {
		apiutil.WriteError(w, r, apiutil.FieldError{
			Field:  "bufferMinutes",
			Reason: fmt.Sprintf("must be a multiple of %d between 0 and %d", slotMinutes, maxBufferMinutes),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), operatingHoursQueryTimeout)
	defer cancel()

	est, ok := requireManagedEstablishment(ctx, w, r, q)
	if !ok {
		return
	}
	updated, err := q.UpdateEstablishmentSchedule(ctx, dbgen.UpdateEstablishmentScheduleParams{
		ID:                   est.ID,
		OpenWeekdays:         calendar.FormatWeekdays(weekdays),
		OpeningTime:          req.OpeningTime.String(),
		ClosingTime:          req.ClosingTime.String(),
		BookingBufferMinutes: req.BufferMinutes,
		RequiresPayment:      req.RequiresPayment,
		RequiresConfirmation: req.RequiresConfirmation,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	overrides, err := q.ListEstablishmentWeekdayHours(ctx, est.ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	rules, err := calendar.RulesFromRows(updated, overrides)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	logger.Info().Int64("establishment_id", est.ID).Str("open_weekdays", updated.OpenWeekdays).Msg("Establishment schedule updated")
	_ = apiutil.WriteJSON(w, http.StatusOK, hoursView(updated, rules))
}

// PUT /api/v1/establishments/{id}/hours/{day_of_week}
func HandleWeekdayHoursUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	q, ok := loadQueries(w, r)
	if !ok {
		return
	}
	dayOfWeek, err := dayOfWeekFromRequest(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req weekdayHoursRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "body", Reason: err.Error()})
		return
	}
	if !req.ClosingTime.After(req.OpeningTime) {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "closingTime", Reason: "must be after openingTime"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), operatingHoursQueryTimeout)
	defer cancel()

	est, ok := requireManagedEstablishment(ctx, w, r, q)
	if !ok {
		return
	}
	updated, err := q.UpsertEstablishmentWeekdayHours(ctx, dbgen.UpsertEstablishmentWeekdayHoursParams{
		EstablishmentID: est.ID,
		DayOfWeek:       dayOfWeek,
		OpeningTime:     req.OpeningTime.String(),
		ClosingTime:     req.ClosingTime.String(),
	})
	if err != nil {
		logger.Error().Err(err).Int64("establishment_id", est.ID).Int64("day_of_week", dayOfWeek).Msg("Failed to upsert weekday hours")
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, DayHoursView{
		DayOfWeek:   int(updated.DayOfWeek),
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
		Override:    true,
	})
}

// DELETE /api/v1/establishments/{id}/hours/{day_of_week}
func HandleWeekdayHoursDelete(w http.ResponseWriter, r *http.Request) {
	q, ok := loadQueries(w, r)
	if !ok {
		return
	}
	dayOfWeek, err := dayOfWeekFromRequest(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), operatingHoursQueryTimeout)
	defer cancel()

	est, ok := requireManagedEstablishment(ctx, w, r, q)
	if !ok {
		return
	}
	rows, err := q.DeleteEstablishmentWeekdayHours(ctx, dbgen.DeleteEstablishmentWeekdayHoursParams{
		EstablishmentID: est.ID,
		DayOfWeek:       dayOfWeek,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if rows == 0 {
		apiutil.WriteError(w, r, schedule.Errorf(schedule.KindNotFound, "no hours override for day %d", dayOfWeek))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/v1/establishments/{id}/holidays/{date}
func HandleHolidayUpsert(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	q, ok := loadQueries(w, r)
	if !ok {
		return
	}
	date, err := dateFromRequest(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req holidayRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "body", Reason: err.Error()})
		return
	}
	if err := validateHoliday(req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), operatingHoursQueryTimeout)
	defer cancel()

	est, ok := requireManagedEstablishment(ctx, w, r, q)
	if !ok {
		return
	}
	params := dbgen.UpsertEstablishmentHolidayParams{
		EstablishmentID: est.ID,
		Date:            date.String(),
		IsOpen:          req.IsOpen,
		Note:            apiutil.ToNullString(&req.Note),
	}
	if req.IsOpen {
		params.OpeningTime = timeOfDayParam(req.OpeningTime)
		params.ClosingTime = timeOfDayParam(req.ClosingTime)
	}
	row, err := q.UpsertEstablishmentHoliday(ctx, params)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	holiday, err := calendar.HolidayFromRow(row)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	cal, err := calendar.NewResolver(q).Load(ctx, est.ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	invalidateDate(ctx, q, cal, date)
	logger.Info().Int64("establishment_id", est.ID).Str("date", date.String()).Bool("is_open", row.IsOpen).Msg("Holiday saved")
	_ = apiutil.WriteJSON(w, http.StatusOK, calendarDayView(calendar.Resolve(cal.Rules, date, &holiday)))
}

// DELETE /api/v1/establishments/{id}/holidays/{date}
func HandleHolidayDelete(w http.ResponseWriter, r *http.Request) {
	q, ok := loadQueries(w, r)
	if !ok {
		return
	}
	date, err := dateFromRequest(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), operatingHoursQueryTimeout)
	defer cancel()

	est, ok := requireManagedEstablishment(ctx, w, r, q)
	if !ok {
		return
	}
	rows, err := q.DeleteEstablishmentHoliday(ctx, dbgen.DeleteEstablishmentHolidayParams{
		EstablishmentID: est.ID,
		Date:            date.String(),
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if rows == 0 {
		apiutil.WriteError(w, r, schedule.Errorf(schedule.KindNotFound, "no holiday on %s", date).On(date))
		return
	}
	cal, err := calendar.NewResolver(q).Load(ctx, est.ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	invalidateDate(ctx, q, cal, date)
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/establishments/{id}/calendar?date=YYYY-MM-DD
func HandleCalendarDay(w http.ResponseWriter, r *http.Request) {
	q, ok := loadQueries(w, r)
	if !ok {
		return
	}
	establishmentID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	date, err := apiutil.DateFromQuery(r, "date")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), operatingHoursQueryTimeout)
	defer cancel()

	cal, err := calendar.NewResolver(q).Load(ctx, establishmentID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	day, err := cal.Resolve(ctx, date)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, calendarDayView(day))
}

func loadQueries(w http.ResponseWriter, r *http.Request) (*dbgen.Queries, bool) {
	if queries == nil {
		log.Ctx(r.Context()).Error().Msg("Database queries not initialized")
		apiutil.WriteErrorMessage(w, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	return queries, true
}

func requireManagedEstablishment(ctx context.Context, w http.ResponseWriter, r *http.Request, q *dbgen.Queries) (dbgen.Establishment, bool) {
	user, ok := apiutil.RequireUser(w, r)
	if !ok {
		return dbgen.Establishment{}, false
	}
	establishmentID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return dbgen.Establishment{}, false
	}
	est, err := q.GetEstablishmentByID(ctx, establishmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, r, schedule.Errorf(schedule.KindNotFound, "establishment not found"))
			return dbgen.Establishment{}, false
		}
		apiutil.WriteError(w, r, err)
		return dbgen.Establishment{}, false
	}
	if !authz.CanManageEstablishment(&user, est.OwnerUserID) {
		apiutil.WriteError(w, r, schedule.Errorf(schedule.KindPermission, "Only the establishment owner can change its hours"))
		return dbgen.Establishment{}, false
	}
	return est, true
}

// invalidateDate drops the cached day view of every court for date. Weekly
// rule changes are left to the cache TTL.
func invalidateDate(ctx context.Context, q *dbgen.Queries, cal *calendar.Calendar, date schedule.LocalDate) {
	courts, err := q.ListCourtsByEstablishment(ctx, cal.Establishment.ID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Int64("establishment_id", cal.Establishment.ID).Msg("Failed to list courts for invalidation")
		return
	}
	midnight := schedule.MustTimeOfDay(0, 0)
	whole := schedule.NewInterval(date.At(midnight, cal.Location), date.AddDays(1).At(midnight, cal.Location))
	for _, court := range courts {
		invalidator.Invalidate(ctx, court.ID, cal.Location, whole)
	}
}

func validateHoliday(req holidayRequest) error {
	if len(strings.TrimSpace(req.Note)) > maxHolidayNote {
		return apiutil.FieldError{Field: "note", Reason: "is too long"}
	}
	if !req.IsOpen {
		return nil
	}
	if req.OpeningTime != nil && req.ClosingTime != nil && !req.ClosingTime.After(*req.OpeningTime) {
		return apiutil.FieldError{Field: "closingTime", Reason: "must be after openingTime"}
	}
	return nil
}

func timeOfDayParam(t *schedule.TimeOfDay) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.String(), Valid: true}
}

func parseWeekdays(raw []int) ([]time.Weekday, error) {
	seen := make(map[int]bool, len(raw))
	weekdays := make([]time.Weekday, 0, len(raw))
	for _, day := range raw {
		if day < 0 || day > 6 {
			return nil, apiutil.FieldError{Field: "openWeekdays", Reason: "days must be between 0 and 6"}
		}
		if seen[day] {
			continue
		}
		seen[day] = true
		weekdays = append(weekdays, time.Weekday(day))
	}
	return weekdays, nil
}

func dayOfWeekFromRequest(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(dayOfWeekParam))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 || value > 6 {
		return 0, apiutil.FieldError{Field: dayOfWeekParam, Reason: "must be between 0 and 6"}
	}
	return value, nil
}

func dateFromRequest(r *http.Request) (schedule.LocalDate, error) {
	date, err := schedule.ParseLocalDate(strings.TrimSpace(r.PathValue(dateParam)))
	if err != nil {
		return schedule.LocalDate{}, apiutil.FieldError{Field: dateParam, Reason: "must be YYYY-MM-DD"}
	}
	return date, nil
}
