package schedule

import (
	"errors"
	"fmt"
)

// Kind classifies why an admission or lifecycle operation was refused.
type Kind string

const (
	KindValidation     Kind = "VALIDATION"
	KindClosed         Kind = "CLOSED"
	KindOutOfHours     Kind = "OUT_OF_HOURS"
	KindSlotTaken      Kind = "SLOT_TAKEN"
	KindOverlapBooking Kind = "OVERLAP_BOOKING"
	KindOverlapBlock   Kind = "OVERLAP_BLOCK"
	KindOverlapPass    Kind = "OVERLAP_PASS"
	KindPermission     Kind = "PERMISSION"
	KindNotFound       Kind = "NOT_FOUND"
	KindState          Kind = "STATE"
)

// IsOverlap reports whether k names a specific kind of slot conflict.
func (k Kind) IsOverlap() bool {
	switch k {
	case KindSlotTaken, KindOverlapBooking, KindOverlapBlock, KindOverlapPass:
		return true
	}
	return false
}

// Sentinels for errors.Is. Any overlap kind also matches ErrSlotTaken.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrClosed         = &Error{Kind: KindClosed}
	ErrOutOfHours     = &Error{Kind: KindOutOfHours}
	ErrSlotTaken      = &Error{Kind: KindSlotTaken}
	ErrOverlapBooking = &Error{Kind: KindOverlapBooking}
	ErrOverlapBlock   = &Error{Kind: KindOverlapBlock}
	ErrOverlapPass    = &Error{Kind: KindOverlapPass}
	ErrPermission     = &Error{Kind: KindPermission}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrState          = &Error{Kind: KindState}
)

// Error is a refusal with a user-facing message. Date is set when the
// refusal concerns one occurrence of a recurring request.
type Error struct {
	Kind    Kind
	Message string
	Date    LocalDate
}

func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return t.Kind == KindSlotTaken && e.Kind.IsOverlap()
}

// On returns a copy of e attributed to date.
func (e *Error) On(date LocalDate) *Error {
	dated := *e
	dated.Date = date
	return &dated
}

// KindOf returns the Kind carried by err, or "" when err is not a schedule error.
func KindOf(err error) Kind {
	var scheduleErr *Error
	if errors.As(err, &scheduleErr) {
		return scheduleErr.Kind
	}
	return ""
}
