package productionerrors

import (
	"net/http"

	"go-mes/internal/shared/apperror"
)

var (
	ErrProductionNotFound = apperror.New(
		apperror.CodeNotFound,
		"Production record not found",
		http.StatusNotFound,
	)

	ErrLossNotFound = apperror.New(
		apperror.CodeNotFound,
		"Loss record not found",
		http.StatusNotFound,
	)

	ErrLossReasonNotFound = apperror.New(
		apperror.CodeNotFound,
		"Loss reason not found",
		http.StatusNotFound,
	)

	ErrInvalidHour = apperror.New(
		apperror.CodeValidationFailure,
		"hour must be one of HOUR-01 through HOUR-12",
		http.StatusBadRequest,
	)

	ErrLineNotFound = apperror.New(
		apperror.CodeValidationFailure,
		"Line does not exist or is deleted",
		http.StatusBadRequest,
	)

	ErrShiftNotFound = apperror.New(
		apperror.CodeValidationFailure,
		"Shift does not exist or is deleted",
		http.StatusBadRequest,
	)

	ErrPlannerNotFound = apperror.New(
		apperror.CodeValidationFailure,
		"Planner does not exist or is deleted",
		http.StatusBadRequest,
	)

	ErrTeamLeaderNotFound = apperror.New(
		apperror.CodeValidationFailure,
		"Team leader does not exist or is deleted",
		http.StatusBadRequest,
	)

	ErrProductionRefMissing = apperror.New(
		apperror.CodeValidationFailure,
		"Production does not exist or is deleted",
		http.StatusBadRequest,
	)

	ErrLossReasonRefMissing = apperror.New(
		apperror.CodeValidationFailure,
		"Loss reason does not exist or is deleted",
		http.StatusBadRequest,
	)

	ErrLossReasonExists = apperror.New(
		apperror.CodeConflict,
		"A loss reason with this id already exists",
		http.StatusConflict,
	)
)
