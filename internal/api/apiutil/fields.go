package apiutil

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/codr1/Courtbook/internal/schedule"
)

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, FieldError{Field: field, Reason: "must be greater than 0"}
	}
	return value, nil
}

// PathID parses the named path wildcard as a positive id.
func PathID(r *http.Request, name string) (int64, error) {
	return ParsePositiveInt64Field(r.PathValue(name), name)
}

// OptionalQueryID returns 0 when the query parameter is absent.
func OptionalQueryID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	return ParsePositiveInt64Field(raw, name)
}

func DateFromQuery(r *http.Request, name string) (schedule.LocalDate, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return schedule.LocalDate{}, FieldError{Field: name, Reason: "is required"}
	}
	date, err := schedule.ParseLocalDate(raw)
	if err != nil {
		return schedule.LocalDate{}, FieldError{Field: name, Reason: "must be YYYY-MM-DD"}
	}
	return date, nil
}

// OptionalMonthFromQuery returns the zero month when the parameter is absent.
func OptionalMonthFromQuery(r *http.Request, name string) (schedule.Month, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return schedule.Month{}, nil
	}
	month, err := schedule.ParseMonth(raw)
	if err != nil {
		return schedule.Month{}, FieldError{Field: name, Reason: "must be YYYY-MM"}
	}
	return month, nil
}

// DurationMinutesFromQuery parses a positive number of minutes.
func DurationMinutesFromQuery(r *http.Request, name string) (time.Duration, error) {
	minutes, err := ParsePositiveInt64Field(r.URL.Query().Get(name), name)
	if err != nil {
		return 0, err
	}
	return time.Duration(minutes) * time.Minute, nil
}

// ParseTimestamp accepts RFC 3339 timestamps only, so every instant carries
// its offset.
func ParseTimestamp(raw string, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, FieldError{Field: field, Reason: "is required"}
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, FieldError{Field: field, Reason: "must be an RFC 3339 timestamp"}
	}
	return parsed, nil
}
