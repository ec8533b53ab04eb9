package blackouterrors

import (
	"net/http"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/shared/apperror"
)

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrExclusiveTargets = apperror.New(
		apperror.CodeInvalidInput,
		"a blackout targets either a department or explicit employees, not both",
		http.StatusBadRequest,
	)
	ErrBlackoutNotFound = apperror.New(
		apperror.CodeNotFound,
		"blackout not found",
		http.StatusNotFound,
	)
	ErrDateRangeBlocked = apperror.New(
		apperror.CodeConflict,
		"the requested dates fall within a blocked period",
		http.StatusConflict,
	)
)
