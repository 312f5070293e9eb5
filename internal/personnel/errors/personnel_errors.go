package personnelerrors

import (
	"net/http"

	"go-mes/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrUserAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"User with the same SAP ID already exists",
		http.StatusConflict,
	)

	ErrUnknownRole = apperror.New(
		apperror.CodeValidationFailure,
		"Unknown role tag",
		http.StatusBadRequest,
	)

	ErrRoleMismatch = apperror.New(
		apperror.CodeValidationFailure,
		"Specialization kind does not match the user's role tag",
		http.StatusBadRequest,
	)

	ErrAlreadySpecialized = apperror.New(
		apperror.CodeValidationFailure,
		"User already has a specialization attached",
		http.StatusBadRequest,
	)

	ErrAnchorNotFound = apperror.New(
		apperror.CodeValidationFailure,
		"Anchor does not exist or is deleted",
		http.StatusBadRequest,
	)

	ErrSpecializationNotFound = apperror.New(
		apperror.CodeNotFound,
		"User has no specialization of that kind",
		http.StatusNotFound,
	)
)
