package apperror

import (
	"fmt"
	"strings"
)

var (
	ErrNotFound     = New(CodeNotFound, "Resource not found")
	ErrForbidden    = New(CodeForbidden, "You do not have permission to access this resource")
	ErrInternal     = New(CodeInternalError, "An unexpected error occurred")
	ErrUnauthorized = New(CodeUnauthorized, "Authentication is required")
	ErrInvalidInput = New(CodeInvalidInput, "The provided input is invalid")
)

// NotFound reports a missing or out-of-scope resource.
func NotFound(resource string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: map[string]any{"resource": resource},
	}
}

// Forbidden reports a role or scope violation.
func Forbidden(reason string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: "You do not have permission to perform this action",
		Details: map[string]any{"reason": reason},
	}
}

// InvalidState reports a lifecycle transition attempted from the wrong state.
func InvalidState(expected []string, actual, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("invalid state %s, expected one of %s", actual, strings.Join(expected, ", "))
	}
	return &AppError{
		Code:    CodeInvalidState,
		Message: message,
		Details: map[string]any{"expected": expected, "actual": actual},
	}
}

// InvalidReference reports a referenced entity that does not exist in the
// caller's tenant.
func InvalidReference(field string) *AppError {
	return &AppError{
		Code:    CodeInvalidReference,
		Message: fmt.Sprintf("%s references an unknown entity", field),
		Details: map[string]any{"field": field},
	}
}

// Conflict reports a uniqueness or business-rule collision.
func Conflict(field, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("%s already exists", field)
	}
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Details: map[string]any{"field": field},
	}
}

// Validation reports a business-data rule violation on a field.
func Validation(field, rule string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: fmt.Sprintf("%s is invalid (%s)", field, rule),
		Details: map[string]any{"field": field, "rule": rule},
	}
}

func RequiredField(field string) *AppError {
	e := Validation(field, "required")
	e.Message = fmt.Sprintf("%s is required", field)
	return e
}

func InvalidField(field string) *AppError {
	return Validation(field, "invalid")
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}
