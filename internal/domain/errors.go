package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is a machine-distinguishable error kind surfaced to API clients.
type ErrorCode string

const (
	CodeValidation        ErrorCode = "VALIDATION_ERROR"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeForbidden         ErrorCode = "FORBIDDEN"
	CodeConflict          ErrorCode = "CONFLICT"
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	CodeAlreadyClaimed    ErrorCode = "ALREADY_CLAIMED"
)

// Error is the base type for all domain errors. Handlers map its Code to an
// HTTP status; Message is safe to return to the caller.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError creates an error for malformed or invalid input.
func NewValidationError(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// NewNotFoundError creates an error for a missing resource.
func NewNotFoundError(resource, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s not found: %s", resource, id)}
}

// NewForbiddenError creates an error for an actor lacking a capability.
func NewForbiddenError(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// NewConflictError creates an error for a lost optimistic-locking write.
func NewConflictError(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// NewInvalidTransitionError creates an error for a status change outside the
// lifecycle transition table.
func NewInvalidTransitionError(from, to string) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition booking from %s to %s", from, to),
	}
}

// NewInvalidStateError creates an error for an operation gated on a lifecycle
// state the booking is not in (edits and deletes of non-pending bookings).
func NewInvalidStateError(message string) *Error {
	return &Error{Code: CodeInvalidTransition, Message: message}
}

// NewAlreadyClaimedError creates an error for a claim attempt that lost the
// race or targeted a booking that is no longer available.
func NewAlreadyClaimedError(message string) *Error {
	return &Error{Code: CodeAlreadyClaimed, Message: message}
}

// CodeOf extracts the domain error code from err, or empty if err is not a
// domain error.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err is a domain error with the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
