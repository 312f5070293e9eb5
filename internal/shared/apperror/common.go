package apperror

import (
	"net/http"
)

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)
)

// Validation reports a write-time contract violation (bad parent ref,
// role mismatch, out-of-range value, unknown enum literal).
func Validation(message string) *AppError {
	return New(CodeValidationFailure, message, http.StatusBadRequest)
}

func RequiredField(field string) *AppError {
	return Validation(field + " is required")
}

func InvalidField(field string) *AppError {
	return Validation(field + " is invalid")
}
