package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used to classify domain failures.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
	ErrBusinessRule = errors.New("business rule violated")
)

// DomainError wraps a sentinel with a machine-readable code and a
// user-readable message. Handlers map the sentinel to an HTTP status and
// surface Message to the client.
type DomainError struct {
	Err     error
	Code    string
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel for errors.Is.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a not-found error for an entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Code:    "not_found",
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// NewConflictError creates a conflict error (e.g. optimistic lock failure).
func NewConflictError(message string) *DomainError {
	return &DomainError{Err: ErrConflict, Code: "conflict", Message: message}
}

// NewInvalidStateError creates an error for an illegal state transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidState,
		Code:    "invalid_state",
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewValidationError creates an error for malformed client input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Err: ErrValidation, Code: "validation_error", Message: message}
}

// NewBusinessRuleError creates an expected business-rule rejection. The code
// identifies the rule that failed; the message is shown to the user.
func NewBusinessRuleError(code, message string) *DomainError {
	return &DomainError{Err: ErrBusinessRule, Code: code, Message: message}
}

// CodeOf returns the machine-readable code of a DomainError, or empty.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
