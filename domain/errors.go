package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
// Field names the offending input for INVALID errors, Action names the
// attempted mutation for FORBIDDEN errors.
type Error struct {
	Code    ErrorCode
	Message string
	Field   string
	Action  string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError reports a rejected input field.
func NewValidationError(field, message string) *Error {
	return &Error{Code: ErrCodeInvalid, Message: message, Field: field}
}

// NewForbiddenError reports a mutation the actor is not allowed to perform.
func NewForbiddenError(action Action) *Error {
	return &Error{
		Code:    ErrCodeForbidden,
		Message: fmt.Sprintf("You can only %s tasks that belong to you.", action),
		Action:  string(action),
	}
}

// Common domain errors.
var (
	ErrUserNotFound       = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound       = NewError(ErrCodeNotFound, "task not found")
	ErrSessionNotFound    = NewError(ErrCodeNotFound, "session not found")
	ErrDuplicateUser      = NewError(ErrCodeConflict, "That username and/or email already exist.")
	ErrTaskConflict       = NewError(ErrCodeConflict, "task was modified concurrently")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "Invalid username or password.")
	ErrNotAuthenticated   = NewError(ErrCodeUnauthorized, "You need to login first.")
	ErrInsufficientRole   = NewError(ErrCodeForbidden, "insufficient permissions")
	ErrRateLimited        = NewError(ErrCodeRateLimited, "too many requests")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// FieldOf returns the offending field of a validation error, if any.
func FieldOf(err error) string {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Field
	}
	return ""
}
