// Package domainerrors defines the coded error type shared by every domain
// service. Codes are stable identifiers the transport layer maps to HTTP
// statuses and the UI maps to user-facing messages; messages are for
// operators, not for machines.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a failure class. Values are part of the public API
// contract and must not change once released.
type Code string

const (
	// CodeUnauthorized signals a caller that is not allowed to perform the
	// operation: a non-administrator hitting an administrator-only write, or
	// a state-machine transition invoked by anyone other than the role
	// holder on record for that step.
	CodeUnauthorized Code = "unauthorized"

	// CodeRoleMismatch signals an assignment target that does not hold the
	// registry role the slot requires.
	CodeRoleMismatch Code = "role_mismatch"

	// CodeUnknownUnit signals an aid unit id that was never issued.
	CodeUnknownUnit Code = "unknown_unit"

	// CodeBelowMinimum signals a donation under the configured minimum.
	CodeBelowMinimum Code = "below_minimum"

	// Delivery ordering violations.
	CodeAlreadyInTransit     Code = "already_in_transit"
	CodeMustBeInTransitFirst Code = "must_be_in_transit_first"
	CodeMustBeDeliveredFirst Code = "must_be_delivered_first"
	CodeAlreadyClaimed       Code = "already_claimed"

	// Transport-level codes.
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal"
)

// Error carries a stable code alongside an operator-facing message and an
// optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in a domain service.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
