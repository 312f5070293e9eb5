package hierarchyerrors

import (
	"net/http"

	"go-mes/internal/shared/apperror"
)

var (
	ErrNodeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Hierarchy node not found",
		http.StatusNotFound,
	)

	ErrParentNotFound = apperror.New(
		apperror.CodeValidationFailure,
		"Parent does not exist or is deleted",
		http.StatusBadRequest,
	)

	ErrUnknownLevel = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown hierarchy level",
		http.StatusBadRequest,
	)
)
