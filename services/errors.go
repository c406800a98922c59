package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Kind classifies a service failure so the transport layer can choose a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInvalidState
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is returned by every service operation that fails for a known reason.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind and message, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

var (
	ErrOpenSessionExists = &Error{Kind: KindConflict, Message: "user already has an open session"}
	ErrNoOpenSession     = &Error{Kind: KindInvalidState, Message: "no open session"}
	ErrEmptyUpdate       = &Error{Kind: KindValidation, Message: "request contains none of checkIn, checkOut or nama"}
	ErrRecordNotFound    = &Error{Kind: KindNotFound, Message: "attendance record not found"}
	ErrNotOwner          = &Error{Kind: KindForbidden, Message: "access denied: you do not own this record"}
	ErrEmailTaken        = &Error{Kind: KindConflict, Message: "email is already registered"}
	ErrBadCredentials    = &Error{Kind: KindValidation, Message: "invalid email or password"}
	ErrUserNotFound      = &Error{Kind: KindNotFound, Message: "user not found"}
)

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func internalError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the Kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// isDuplicateKey recognizes unique violations whether or not the driver translated them.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}
