package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// Kind classifies business-rule violations. None of them are retryable.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindCapacityExceeded
	KindSupervisorUnavailable
	KindInvalidCapacity
	KindNoSlotsAvailable
	KindInvalid
)

var kindNames = map[Kind]string{
	KindInternal:              "internal",
	KindNotFound:              "not_found",
	KindConflict:              "conflict",
	KindCapacityExceeded:      "capacity_exceeded",
	KindSupervisorUnavailable: "supervisor_unavailable",
	KindInvalidCapacity:       "invalid_capacity",
	KindNoSlotsAvailable:      "no_slots_available",
	KindInvalid:               "invalid",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is a business-rule violation with a stable Code (e.g. "room_conflict") callers can switch on.
// Two Errors match with errors.Is when their codes are equal, so a conflict caught by a storage
// constraint is indistinguishable from the one raised by the application pre-check.
type Error struct {
	Kind Kind
	Code string
	msg  string
}

func NewError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, msg: msg}
}

func (err *Error) Error() string {
	return err.msg
}

func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == err.Code
}

// WithMessage returns a copy of err with a more specific message, keeping its Kind and Code.
func (err *Error) WithMessage(msg string) *Error {
	return &Error{Kind: err.Kind, Code: err.Code, msg: msg}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
