package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/balance"
	blackouterrors "github.com/DSI-VEDEM/CONGE-sub001/internal/blackout/errors"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/domain"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/employee"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/events"
	leaveerrors "github.com/DSI-VEDEM/CONGE-sub001/internal/leave/errors"
	kafkaout "github.com/DSI-VEDEM/CONGE-sub001/internal/messaging/kafka"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/routing"
	routingerrors "github.com/DSI-VEDEM/CONGE-sub001/internal/routing/errors"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/shared/contextutil"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/shared/counter"
)

// Narrow collaborator interfaces, so the state machine is testable with fakes.

type EmployeeStore interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
}

type BlackoutChecker interface {
	HasBlockedRange(ctx context.Context, employeeID string, departmentID *uuid.UUID, startDate, endDate time.Time) (bool, error)
}

type AssigneeResolver interface {
	InitialAssignee(ctx context.Context, requester *employee.Employee) (routing.Assignment, error)
	EscalationTarget(ctx context.Context, requester, acting *employee.Employee, toRole *domain.Role) (*employee.Employee, error)
}

type Service interface {
	Submit(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, actorID, id, comment string) (LeaveResponse, error)
	Reject(ctx context.Context, actorID, id, comment string) (LeaveResponse, error)
	Cancel(ctx context.Context, actorID, id, comment string) (LeaveResponse, error)
	Escalate(ctx context.Context, actorID, id string, toRole *string, comment string) (LeaveResponse, error)
	Inbox(ctx context.Context, actorID string) ([]LeaveResponse, error)
	ReconcileOverdue(ctx context.Context, actorID string) (int, error)
	History(ctx context.Context, filter HistoryFilter) ([]LeaveResponse, int64, error)
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	Decisions(ctx context.Context, requestID string) ([]DecisionResponse, error)
}

// Deps bundles the collaborators of the state machine.
type Deps struct {
	Repo      Repository
	Outbox    kafkaout.OutboxRepository
	Employees EmployeeStore
	Balances  balance.Service
	Blackouts BlackoutChecker
	Resolver  AssigneeResolver
	Counter   counter.Repository

	// AutoApproveAfter is how long a manager may sit on a request before the
	// overdue sweep approves it on their behalf.
	AutoApproveAfter time.Duration
}

const defaultAutoApproveAfter = 5 * 24 * time.Hour

type service struct {
	db     *sql.DB
	deps   Deps
	logger *zap.Logger
}

func NewService(db *sql.DB, deps Deps, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if deps.AutoApproveAfter <= 0 {
		deps.AutoApproveAfter = defaultAutoApproveAfter
	}
	return &service{db: db, deps: deps, logger: l}
}

func (s *service) Submit(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("submit leave requested",
		zap.String("actor_id", actorID),
		zap.String("type", req.Type),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	actor, err := s.findEmployee(ctx, actorID)
	if err != nil {
		return LeaveResponse{}, err
	}
	if actor.Role == domain.RoleCEO {
		return LeaveResponse{}, routingerrors.ErrCEOCannotSubmit
	}
	if actor.Status != domain.StatusActive {
		return LeaveResponse{}, leaveerrors.ErrRequesterNotActive
	}

	leaveType, startDate, endDate, err := validateSubmission(actor, req)
	if err != nil {
		s.logger.Warn("submit leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	requestedDays := balance.InclusiveDays(startDate, endDate)

	if leaveType.ConsumesBalance() {
		avail, err := s.deps.Balances.AvailableForSubmission(ctx, actorID, startDate.Year())
		if err != nil {
			s.logger.Error("submit leave availability check failed", zap.Error(err))
			return LeaveResponse{}, err
		}
		if decimal.NewFromInt(int64(requestedDays)).GreaterThan(avail.Total) {
			s.logger.Warn("submit leave balance exceeded",
				zap.String("actor_id", actorID),
				zap.Int("requested_days", requestedDays),
				zap.String("available_total", avail.Total.String()),
			)
			return LeaveResponse{}, leaveerrors.ErrBalanceExceeded
		}
	}

	blocked, err := s.deps.Blackouts.HasBlockedRange(ctx, actorID, actor.DepartmentID, startDate, endDate)
	if err != nil {
		s.logger.Error("submit leave blackout check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if blocked {
		return LeaveResponse{}, blackouterrors.ErrDateRangeBlocked
	}

	assignment, err := s.deps.Resolver.InitialAssignee(ctx, actor)
	if err != nil {
		return LeaveResponse{}, err
	}

	seq, err := s.deps.Counter.GetNextValue(ctx, fmt.Sprintf("leave_request:%d", startDate.Year()))
	if err != nil {
		return LeaveResponse{}, err
	}

	now := time.Now().UTC()
	request := &LeaveRequest{
		ID:                uuid.New(),
		Reference:         fmt.Sprintf("LR-%d-%05d", startDate.Year(), seq),
		EmployeeID:        actor.ID,
		Type:              leaveType,
		StartDate:         startDate,
		EndDate:           endDate,
		Reason:            req.Reason,
		Status:            StatusSubmitted,
		CurrentAssigneeID: &assignment.Assignee.ID,
		CreatedAt:         now,
	}
	if assignment.Assignee.Role.IsManager() {
		request.DeptHeadAssignedAt = &now
	}
	if assignment.Assignee.Role == domain.RoleCEO || assignment.CopyToCEO != nil {
		request.ReachedCeoAt = &now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.deps.Repo.WithTx(tx)
	qoutbox := s.deps.Outbox.WithTx(tx)

	if err := qtx.Create(ctx, request); err != nil {
		s.logger.Error("submit leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := qtx.CreateDecision(ctx, &LeaveDecision{
		ID:             uuid.New(),
		LeaveRequestID: request.ID,
		ActorID:        actor.ID,
		Type:           DecisionSubmit,
		Comment:        req.Reason,
	}); err != nil {
		return LeaveResponse{}, err
	}

	if assignment.CopyToCEO != nil {
		// Manager submissions are visible to the CEO from the start; the
		// auxiliary ledger entry records that without moving the assignee.
		if err := qtx.CreateDecision(ctx, &LeaveDecision{
			ID:             uuid.New(),
			LeaveRequestID: request.ID,
			ActorID:        actor.ID,
			Type:           DecisionEscalate,
			Comment:        "request copied to the CEO on submission",
			ToEmployeeID:   &assignment.CopyToCEO.ID,
		}); err != nil {
			return LeaveResponse{}, err
		}
	}

	if err := s.enqueueDecisionEvent(ctx, qoutbox, request, DecisionSubmit, actor.ID); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("leave request submitted",
		zap.String("leave_id", request.ID.String()),
		zap.String("reference", request.Reference),
		zap.String("employee_id", actor.ID.String()),
		zap.String("assignee_id", assignment.Assignee.ID.String()),
	)
	return mapToResponse(*request), nil
}

func (s *service) Approve(ctx context.Context, actorID, id, comment string) (LeaveResponse, error) {
	return s.decide(ctx, actorID, id, comment, StatusApproved, DecisionApprove)
}

func (s *service) Reject(ctx context.Context, actorID, id, comment string) (LeaveResponse, error) {
	return s.decide(ctx, actorID, id, comment, StatusRejected, DecisionReject)
}

// decide applies an approve/reject transition. Authorized actors are the
// current assignee, or the CEO once the request has ever reached them.
func (s *service) decide(ctx context.Context, actorID, id, comment, targetStatus, decisionType string) (LeaveResponse, error) {
	actor, err := s.findEmployee(ctx, actorID)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decide leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.deps.Repo.WithTx(tx)
	request, err := s.lockRequest(ctx, qtx, id)
	if err != nil {
		return LeaveResponse{}, err
	}

	if request.EmployeeID == actor.ID {
		return LeaveResponse{}, leaveerrors.ErrSelfDecision
	}
	if !mayDecide(request, actor) {
		s.logger.Warn("decide leave unauthorized",
			zap.String("leave_id", id),
			zap.String("actor_id", actorID),
			zap.String("actor_role", string(actor.Role)),
		)
		return LeaveResponse{}, leaveerrors.ErrNotCurrentAssignee
	}

	request.Status = targetStatus
	request.CurrentAssigneeID = nil
	request.DeptHeadAssignedAt = nil

	if err := s.writeTransition(ctx, tx, qtx, request, &LeaveDecision{
		ID:             uuid.New(),
		LeaveRequestID: request.ID,
		ActorID:        actor.ID,
		Type:           decisionType,
		Comment:        comment,
	}); err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("leave request decided",
		zap.String("leave_id", id),
		zap.String("status", targetStatus),
		zap.String("actor_id", actorID),
	)
	return mapToResponse(*request), nil
}

func (s *service) Cancel(ctx context.Context, actorID, id, comment string) (LeaveResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.deps.Repo.WithTx(tx)
	request, err := s.lockRequest(ctx, qtx, id)
	if err != nil {
		return LeaveResponse{}, err
	}

	if request.EmployeeID != actorUUID {
		return LeaveResponse{}, leaveerrors.ErrOnlyRequesterMayCancel
	}

	request.Status = StatusCanceled
	request.CurrentAssigneeID = nil
	request.DeptHeadAssignedAt = nil

	if err := s.writeTransition(ctx, tx, qtx, request, &LeaveDecision{
		ID:             uuid.New(),
		LeaveRequestID: request.ID,
		ActorID:        actorUUID,
		Type:           DecisionCancel,
		Comment:        comment,
	}); err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("leave request cancelled",
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
	)
	return mapToResponse(*request), nil
}

func (s *service) Escalate(ctx context.Context, actorID, id string, toRole *string, comment string) (LeaveResponse, error) {
	actor, err := s.findEmployee(ctx, actorID)
	if err != nil {
		return LeaveResponse{}, err
	}

	var targetRole *domain.Role
	if toRole != nil {
		r := domain.Role(*toRole)
		if !r.Valid() {
			return LeaveResponse{}, routingerrors.ErrInvalidEscalationTarget
		}
		targetRole = &r
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.deps.Repo.WithTx(tx)
	request, err := s.lockRequest(ctx, qtx, id)
	if err != nil {
		return LeaveResponse{}, err
	}

	if request.CurrentAssigneeID == nil || *request.CurrentAssigneeID != actor.ID {
		return LeaveResponse{}, leaveerrors.ErrNotCurrentAssignee
	}

	requester, err := s.findEmployee(ctx, request.EmployeeID.String())
	if err != nil {
		return LeaveResponse{}, err
	}

	target, err := s.deps.Resolver.EscalationTarget(ctx, requester, actor, targetRole)
	if err != nil {
		return LeaveResponse{}, err
	}

	now := time.Now().UTC()
	request.Status = StatusPending
	request.CurrentAssigneeID = &target.ID
	if target.Role.IsManager() {
		request.DeptHeadAssignedAt = &now
	} else {
		request.DeptHeadAssignedAt = nil
	}
	if target.Role == domain.RoleCEO && request.ReachedCeoAt == nil {
		request.ReachedCeoAt = &now
	}

	if err := s.writeTransition(ctx, tx, qtx, request, &LeaveDecision{
		ID:             uuid.New(),
		LeaveRequestID: request.ID,
		ActorID:        actor.ID,
		Type:           DecisionEscalate,
		Comment:        comment,
		ToEmployeeID:   &target.ID,
	}); err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("leave request escalated",
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
		zap.String("new_assignee_id", target.ID.String()),
		zap.String("new_assignee_role", string(target.Role)),
	)
	return mapToResponse(*request), nil
}

// Inbox lists the requests waiting on the actor. The overdue sweep runs
// first, so the queue never shows work the SLA has already resolved.
func (s *service) Inbox(ctx context.Context, actorID string) ([]LeaveResponse, error) {
	if _, err := s.ReconcileOverdue(ctx, actorID); err != nil {
		return nil, err
	}

	list, err := s.deps.Repo.FindPendingByAssignee(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(list), nil
}

// ReconcileOverdue auto-approves requests parked with a department or service
// head past the configured delay. Each request is handled in its own
// transaction, so a failure on one does not hold back the rest.
func (s *service) ReconcileOverdue(ctx context.Context, actorID string) (int, error) {
	cutoff := time.Now().UTC().Add(-s.deps.AutoApproveAfter)

	overdue, err := s.deps.Repo.FindOverdueManagerAssignments(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	approved := 0
	for _, candidate := range overdue {
		if err := s.autoApprove(ctx, candidate.ID.String(), cutoff); err != nil {
			s.logger.Error("auto-approve failed",
				zap.String("leave_id", candidate.ID.String()),
				zap.Error(err),
			)
			continue
		}
		approved++
	}

	if approved > 0 {
		s.logger.Info("overdue requests auto-approved",
			zap.Int("count", approved),
			zap.String("triggered_by", actorID),
		)
	}
	return approved, nil
}

func (s *service) autoApprove(ctx context.Context, id string, cutoff time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.deps.Repo.WithTx(tx)
	request, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return err
	}

	// Re-check under lock: a concurrent decision may have resolved it.
	if IsTerminal(request.Status) ||
		request.CurrentAssigneeID == nil ||
		request.DeptHeadAssignedAt == nil ||
		!request.DeptHeadAssignedAt.Before(cutoff) {
		return nil
	}

	assignee := *request.CurrentAssigneeID
	days := int(s.deps.AutoApproveAfter.Hours() / 24)

	request.Status = StatusApproved
	request.CurrentAssigneeID = nil
	request.DeptHeadAssignedAt = nil

	return s.writeTransition(ctx, tx, qtx, request, &LeaveDecision{
		ID:             uuid.New(),
		LeaveRequestID: request.ID,
		ActorID:        assignee,
		Type:           DecisionApprove,
		Comment:        fmt.Sprintf("approved automatically after %d days without action", days),
	})
}

func (s *service) History(ctx context.Context, filter HistoryFilter) ([]LeaveResponse, int64, error) {
	list, total, err := s.deps.Repo.FindByFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return mapToListResponse(list), total, nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	request, err := s.deps.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	return mapToResponse(*request), nil
}

func (s *service) Decisions(ctx context.Context, requestID string) ([]DecisionResponse, error) {
	if _, err := s.GetByID(ctx, requestID); err != nil {
		return nil, err
	}

	decisions, err := s.deps.Repo.ListDecisionsByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	resp := make([]DecisionResponse, len(decisions))
	for i, d := range decisions {
		resp[i] = mapDecisionToResponse(d)
	}
	return resp, nil
}

// writeTransition persists the request update, the ledger entry and the
// outbox event inside the surrounding transaction and commits it.
func (s *service) writeTransition(ctx context.Context, tx *sql.Tx, qtx Repository, request *LeaveRequest, decision *LeaveDecision) error {
	if err := qtx.UpdateState(ctx, request); err != nil {
		s.logger.Error("transition persist failed",
			zap.String("leave_id", request.ID.String()),
			zap.Error(err),
		)
		return err
	}
	if err := qtx.CreateDecision(ctx, decision); err != nil {
		return err
	}
	if err := s.enqueueDecisionEvent(ctx, s.deps.Outbox.WithTx(tx), request, decision.Type, decision.ActorID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("transition commit failed",
			zap.String("leave_id", request.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) lockRequest(ctx context.Context, qtx Repository, id string) (*LeaveRequest, error) {
	request, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		return nil, err
	}
	if IsTerminal(request.Status) {
		return nil, leaveerrors.ErrRequestAlreadyFinal
	}
	return request, nil
}

func (s *service) findEmployee(ctx context.Context, id string) (*employee.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaveerrors.ErrInvalidActorID
	}
	emp, err := s.deps.Employees.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrInvalidActorID
		}
		return nil, err
	}
	return emp, nil
}

// mayDecide implements the approve/reject authorization rule.
func mayDecide(request *LeaveRequest, actor *employee.Employee) bool {
	if request.CurrentAssigneeID != nil && *request.CurrentAssigneeID == actor.ID {
		return true
	}
	return request.ReachedCeoAt != nil && actor.Role == domain.RoleCEO
}

func validateSubmission(actor *employee.Employee, req CreateLeaveRequest) (domain.LeaveType, time.Time, time.Time, error) {
	leaveType := domain.LeaveType(req.Type)
	if !leaveType.Submittable() {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrUnknownLeaveType
	}
	if gender, restricted := leaveType.RestrictedToGender(); restricted && actor.Gender != gender {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrGenderRestrictedType
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return leaveType, startDate, endDate, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t.UTC(), nil
}

func (s *service) enqueueDecisionEvent(ctx context.Context, outbox kafkaout.OutboxRepository, request *LeaveRequest, decisionType string, actorID uuid.UUID) error {
	payload, err := json.Marshal(events.LeaveDecisionRecordedEvent{
		EventType:      "leave.decision.recorded",
		LeaveRequestID: request.ID.String(),
		Reference:      request.Reference,
		EmployeeID:     request.EmployeeID.String(),
		ActorID:        actorID.String(),
		DecisionType:   decisionType,
		RequestStatus:  request.Status,
		OccurredAt:     time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	event := kafkaout.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: kafkaout.AggregateLeaveRequest,
		AggregateID:   request.ID.String(),
		EventType:     "leave.decision.recorded",
		Topic:         events.LeaveDecisionTopic,
		Payload:       payload,
		Status:        kafkaout.OutboxStatusPending,
	}
	if err := kafkaout.ValidateOutboxEvent(event); err != nil {
		return err
	}
	return outbox.Create(ctx, event)
}

func mapToResponse(r LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:         r.ID.String(),
		Reference:  r.Reference,
		EmployeeID: r.EmployeeID.String(),
		Type:       string(r.Type),
		StartDate:  r.StartDate.Format("2006-01-02"),
		EndDate:    r.EndDate.Format("2006-01-02"),
		TotalDays:  balance.InclusiveDays(r.StartDate, r.EndDate),
		Reason:     r.Reason,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
	if r.CurrentAssigneeID != nil {
		v := r.CurrentAssigneeID.String()
		resp.CurrentAssigneeID = &v
	}
	if r.DeptHeadAssignedAt != nil {
		v := r.DeptHeadAssignedAt.Format(time.RFC3339)
		resp.DeptHeadAssignedAt = &v
	}
	if r.ReachedCeoAt != nil {
		v := r.ReachedCeoAt.Format(time.RFC3339)
		resp.ReachedCeoAt = &v
	}
	return resp
}

func mapToListResponse(list []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(list))
	for i, r := range list {
		resp[i] = mapToResponse(r)
	}
	return resp
}

func mapDecisionToResponse(d LeaveDecision) DecisionResponse {
	resp := DecisionResponse{
		ID:             d.ID.String(),
		LeaveRequestID: d.LeaveRequestID.String(),
		ActorID:        d.ActorID.String(),
		Type:           d.Type,
		Comment:        d.Comment,
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
	}
	if d.ToEmployeeID != nil {
		v := d.ToEmployeeID.String()
		resp.ToEmployeeID = &v
	}
	return resp
}
