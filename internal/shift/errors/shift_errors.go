package shifterrors

import (
	"net/http"

	"go-mes/internal/shared/apperror"
)

var (
	ErrShiftNotFound = apperror.New(
		apperror.CodeNotFound,
		"Shift not found",
		http.StatusNotFound,
	)

	ErrInvalidDayNight = apperror.New(
		apperror.CodeValidationFailure,
		"day_night must be DAY or NIGHT",
		http.StatusBadRequest,
	)

	ErrInvalidDesignation = apperror.New(
		apperror.CodeValidationFailure,
		"shift must be SHIFT-A, SHIFT-B or SHIFT-C",
		http.StatusBadRequest,
	)

	ErrInvalidDate = apperror.New(
		apperror.CodeValidationFailure,
		"date must be formatted as YYYY-MM-DD",
		http.StatusBadRequest,
	)

	ErrPlantNotFound = apperror.New(
		apperror.CodeValidationFailure,
		"Plant does not exist or is deleted",
		http.StatusBadRequest,
	)

	ErrPlannerNotFound = apperror.New(
		apperror.CodeValidationFailure,
		"Planner does not exist or is deleted",
		http.StatusBadRequest,
	)
)
