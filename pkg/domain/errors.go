package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a DomainError for transport-level mapping.
type ErrorCode string

const (
	CodeValidation        ErrorCode = "VALIDATION"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	CodeForbidden         ErrorCode = "FORBIDDEN"
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	CodeInvalidState      ErrorCode = "INVALID_STATE"
	CodeAlreadyProcessed  ErrorCode = "ALREADY_PROCESSED"
	CodeConflict          ErrorCode = "CONFLICT"
	CodeGatewayFailure    ErrorCode = "GATEWAY_FAILURE"
	CodeInternal          ErrorCode = "INTERNAL"
)

// DomainError is an error with a stable machine-readable code. All errors
// surfaced to API clients are expected to be DomainErrors; anything else is
// treated as internal.
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewValidationError creates a DomainError for invalid input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message}
}

// NewNotFoundError creates a DomainError for a missing resource.
func NewNotFoundError(resource, id string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

// NewUnauthorizedError creates a DomainError for a missing or invalid credential.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Code: CodeUnauthorized, Message: message}
}

// NewForbiddenError creates a DomainError for an authenticated caller that
// lacks permission for the operation.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Code: CodeForbidden, Message: message}
}

// NewInvalidTransitionError creates a DomainError for a status change that the
// transition table does not permit. The offending pair is part of the message.
func NewInvalidTransitionError(from, to string) *DomainError {
	return &DomainError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("invalid status transition from %q to %q", from, to),
	}
}

// NewInvalidStateError creates a DomainError for an operation-specific
// precondition failure not covered by the transition table.
func NewInvalidStateError(message string) *DomainError {
	return &DomainError{Code: CodeInvalidState, Message: message}
}

// NewAlreadyProcessedError creates a DomainError for an idempotency-guard hit.
func NewAlreadyProcessedError(message string) *DomainError {
	return &DomainError{Code: CodeAlreadyProcessed, Message: message}
}

// NewConflictError creates a DomainError for a concurrent-modification conflict.
func NewConflictError(message string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: message}
}

// NewGatewayError creates a DomainError for a payment gateway failure. The
// gateway's own message is stored verbatim and treated as opaque.
func NewGatewayError(message string) *DomainError {
	return &DomainError{Code: CodeGatewayFailure, Message: message}
}

// CodeOf returns the ErrorCode of err, or CodeInternal if err is not a
// DomainError.
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
