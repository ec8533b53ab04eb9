package routingerrors

import (
	"net/http"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/shared/apperror"
)

var (
	ErrCEOCannotSubmit = apperror.New(
		apperror.CodeForbidden,
		"the CEO cannot submit leave requests through this flow",
		http.StatusForbidden,
	)
	ErrNoEligibleAssignee = apperror.New(
		apperror.CodeConflict,
		"no eligible active assignee for this request",
		http.StatusConflict,
	)
	ErrInvalidEscalationTarget = apperror.New(
		apperror.CodeInvalidInput,
		"escalation to the requested role is not allowed from this role",
		http.StatusBadRequest,
	)
	ErrSelfEscalation = apperror.New(
		apperror.CodeForbidden,
		"an assignee cannot escalate a request to themselves",
		http.StatusForbidden,
	)
)
