package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/api/authz"
	"github.com/codr1/Courtbook/internal/schedule"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Date  string `json:"date,omitempty"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, ErrorBody{Error: message})
}

// StatusForKind maps an engine refusal onto an HTTP status.
func StatusForKind(kind schedule.Kind) int {
	switch {
	case kind == schedule.KindValidation:
		return http.StatusBadRequest
	case kind == schedule.KindClosed, kind == schedule.KindOutOfHours:
		return http.StatusUnprocessableEntity
	case kind.IsOverlap(), kind == schedule.KindState:
		return http.StatusConflict
	case kind == schedule.KindPermission:
		return http.StatusForbidden
	case kind == schedule.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// WriteError renders err as a JSON error. Engine refusals keep their kind
// and date; anything else is logged and reported as a 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var engineErr *schedule.Error
	if errors.As(err, &engineErr) {
		body := ErrorBody{Error: engineErr.Message, Kind: string(engineErr.Kind)}
		if !engineErr.Date.IsZero() {
			body.Date = engineErr.Date.String()
		}
		_ = WriteJSON(w, StatusForKind(engineErr.Kind), body)
		return
	}

	var fieldErr FieldError
	if errors.As(err, &fieldErr) {
		_ = WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: fieldErr.Error(), Kind: string(schedule.KindValidation)})
		return
	}

	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		WriteErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, authz.ErrForbidden):
		_ = WriteJSON(w, http.StatusForbidden, ErrorBody{Error: "Forbidden", Kind: string(schedule.KindPermission)})
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		WriteErrorMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// RequireUser returns the authenticated caller, writing 401 when there is none.
func RequireUser(w http.ResponseWriter, r *http.Request) (authz.AuthUser, bool) {
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return authz.AuthUser{}, false
	}
	return *user, true
}
