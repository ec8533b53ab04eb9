package leaveerrors

import (
	"net/http"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/shared/apperror"
)

var (
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
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
	ErrUnknownLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"unknown or non-submittable leave type",
		http.StatusBadRequest,
	)
	ErrGenderRestrictedType = apperror.New(
		apperror.CodeInvalidInput,
		"this leave type is not available for the requesting employee",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrRequestAlreadyFinal = apperror.New(
		apperror.CodeConflict,
		"the leave request is already in a terminal state",
		http.StatusConflict,
	)
	ErrNotCurrentAssignee = apperror.New(
		apperror.CodeForbidden,
		"only the current assignee may act on this request",
		http.StatusForbidden,
	)
	ErrSelfDecision = apperror.New(
		apperror.CodeForbidden,
		"an employee cannot decide on their own request",
		http.StatusForbidden,
	)
	ErrOnlyRequesterMayCancel = apperror.New(
		apperror.CodeForbidden,
		"only the requester may cancel this request",
		http.StatusForbidden,
	)
	ErrBalanceExceeded = apperror.New(
		apperror.CodeConflict,
		"the requested days exceed the available leave balance",
		http.StatusConflict,
	)
	ErrRequesterNotActive = apperror.New(
		apperror.CodeInvalidState,
		"the requesting employee account is not active",
		http.StatusConflict,
	)
)
