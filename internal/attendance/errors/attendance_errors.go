package attendanceerrors

import (
	"net/http"

	"go-mes/internal/shared/apperror"
)

var (
	ErrAttendanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance record not found",
		http.StatusNotFound,
	)

	ErrAttendanceTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance type not found",
		http.StatusNotFound,
	)

	ErrMemberNotFound = apperror.New(
		apperror.CodeValidationFailure,
		"Member does not exist or is deleted",
		http.StatusBadRequest,
	)

	ErrShiftNotFound = apperror.New(
		apperror.CodeValidationFailure,
		"Shift does not exist or is deleted",
		http.StatusBadRequest,
	)

	ErrTeamLeaderNotFound = apperror.New(
		apperror.CodeValidationFailure,
		"Team leader does not exist or is deleted",
		http.StatusBadRequest,
	)

	ErrTypeRefMissing = apperror.New(
		apperror.CodeValidationFailure,
		"Attendance type does not exist or is deleted",
		http.StatusBadRequest,
	)

	ErrWorkingCellNotFound = apperror.New(
		apperror.CodeValidationFailure,
		"Working cell does not exist or is deleted",
		http.StatusBadRequest,
	)

	ErrAttendanceTypeExists = apperror.New(
		apperror.CodeConflict,
		"An attendance type with this id already exists",
		http.StatusConflict,
	)
)
