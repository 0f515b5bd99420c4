package services

import (
	"errors"
	"fmt"

	"github.com/avwhitney/stagehand/pkg/core/model"
)

// ErrorKind classifies a rejected roster operation. Every kind maps to a
// specific human-readable reply; none is fatal to the service.
type ErrorKind int

const (
	KindEventNotFound ErrorKind = iota + 1
	KindIllegalForMode
	KindNotSignedUp
	KindUnauthorized
	KindCardNotFound
	KindInvalidDateRange
	KindStorage
)

// RoleError is a rejected roster operation with a user-facing reason
type RoleError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *RoleError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *RoleError) Unwrap() error {
	return e.cause
}

func (e *RoleError) withCause(cause error) *RoleError {
	e.cause = cause
	return e
}

// AsRoleError extracts a RoleError from an error chain
func AsRoleError(err error) (*RoleError, bool) {
	var re *RoleError
	ok := errors.As(err, &re)
	return re, ok
}

func errEventNotFound() *RoleError {
	return &RoleError{
		Kind:    KindEventNotFound,
		Message: "That show doesn't have a live card.",
	}
}

func errIllegalForMode(mode model.Mode, role model.Role) *RoleError {
	var msg string
	switch mode {
	case model.ModeFestival:
		msg = "This show is a festival, training roles are not available."
	case model.ModeMeeting:
		msg = "This is a meeting, only attendance signups are available."
	case model.ModeNone:
		msg = "Signups are closed for this show."
	default:
		msg = fmt.Sprintf("The %s role isn't available on this show.", role)
	}
	return &RoleError{Kind: KindIllegalForMode, Message: msg}
}

func errNotSignedUp() *RoleError {
	return &RoleError{
		Kind:    KindNotSignedUp,
		Message: "You aren't in the thread.",
	}
}

func errUnauthorized() *RoleError {
	return &RoleError{
		Kind:    KindUnauthorized,
		Message: "You don't have permission to do that.",
	}
}

func errCardNotFound() *RoleError {
	return &RoleError{
		Kind:    KindCardNotFound,
		Message: "That show card couldn't be found.",
	}
}

func errInvalidDateRange(msg string) *RoleError {
	return &RoleError{Kind: KindInvalidDateRange, Message: msg}
}

func errStorage(cause error) *RoleError {
	return &RoleError{
		Kind:    KindStorage,
		Message: "Something went wrong saving that. Please try again.",
		cause:   cause,
	}
}
