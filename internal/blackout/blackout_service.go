package blackout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	blackouterrors "github.com/DSI-VEDEM/CONGE-sub001/internal/blackout/errors"
)

type Service interface {
	Create(ctx context.Context, actorID string, req CreateBlackoutRequest) (BlackoutResponse, error)
	GetAll(ctx context.Context) ([]BlackoutResponse, error)
	Delete(ctx context.Context, id string) error
	HasBlockedRange(ctx context.Context, employeeID string, departmentID *uuid.UUID, startDate, endDate time.Time) (bool, error)
}

type service struct {
	repo Repository
	// untargetedBlocksAll resolves the legacy ambiguity once at startup: a
	// blackout with no department and no explicit targets is company-wide
	// when true, inert when false.
	untargetedBlocksAll bool
	logger              *zap.Logger
}

func NewService(repo Repository, untargetedBlocksAll bool, logger ...*zap.Logger) Service {
	l := zap.L().Named("blackout.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("blackout.service")
	}
	return &service{repo: repo, untargetedBlocksAll: untargetedBlocksAll, logger: l}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateBlackoutRequest) (BlackoutResponse, error) {
	createdBy, err := uuid.Parse(actorID)
	if err != nil {
		return BlackoutResponse{}, blackouterrors.ErrBlackoutNotFound
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return BlackoutResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return BlackoutResponse{}, err
	}
	if startDate.After(endDate) {
		return BlackoutResponse{}, blackouterrors.ErrInvalidDateRange
	}
	if req.DepartmentID != nil && len(req.EmployeeIDs) > 0 {
		return BlackoutResponse{}, blackouterrors.ErrExclusiveTargets
	}

	b := &Blackout{
		ID:          uuid.New(),
		StartDate:   startDate,
		EndDate:     endDate,
		CreatedByID: createdBy,
	}
	if req.DepartmentID != nil {
		deptID, err := uuid.Parse(*req.DepartmentID)
		if err != nil {
			return BlackoutResponse{}, blackouterrors.ErrExclusiveTargets
		}
		b.DepartmentID = &deptID
	}
	for _, id := range req.EmployeeIDs {
		empID, err := uuid.Parse(id)
		if err != nil {
			return BlackoutResponse{}, blackouterrors.ErrExclusiveTargets
		}
		b.Targets = append(b.Targets, BlackoutTarget{
			ID:         uuid.New(),
			BlackoutID: b.ID,
			EmployeeID: empID,
		})
	}

	if err := s.repo.Create(ctx, b); err != nil {
		s.logger.Error("create blackout persist failed", zap.Error(err))
		return BlackoutResponse{}, err
	}

	s.logger.Info("blackout created",
		zap.String("blackout_id", b.ID.String()),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Int("targets", len(b.Targets)),
	)
	return mapToResponse(*b), nil
}

func (s *service) GetAll(ctx context.Context) ([]BlackoutResponse, error) {
	list, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]BlackoutResponse, len(list))
	for i, b := range list {
		resp[i] = mapToResponse(b)
	}
	return resp, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return blackouterrors.ErrBlackoutNotFound
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}

// HasBlockedRange reports whether any persisted blackout overlapping the
// requested window applies to the employee.
func (s *service) HasBlockedRange(ctx context.Context, employeeID string, departmentID *uuid.UUID, startDate, endDate time.Time) (bool, error) {
	overlapping, err := s.repo.FindOverlapping(ctx, startDate, endDate)
	if err != nil {
		return false, err
	}

	empID, err := uuid.Parse(employeeID)
	if err != nil {
		return false, nil
	}

	for _, b := range overlapping {
		if s.appliesTo(b, empID, departmentID) {
			return true, nil
		}
	}
	return false, nil
}

// appliesTo implements the targeting rule: explicit employee target, then
// department match, then the configured untargeted policy.
func (s *service) appliesTo(b Blackout, employeeID uuid.UUID, departmentID *uuid.UUID) bool {
	for _, t := range b.Targets {
		if t.EmployeeID == employeeID {
			return true
		}
	}

	if b.DepartmentID != nil {
		return departmentID != nil && *b.DepartmentID == *departmentID
	}

	if len(b.Targets) == 0 {
		return s.untargetedBlocksAll
	}
	return false
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, blackouterrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(b Blackout) BlackoutResponse {
	resp := BlackoutResponse{
		ID:          b.ID.String(),
		StartDate:   b.StartDate.Format("2006-01-02"),
		EndDate:     b.EndDate.Format("2006-01-02"),
		CreatedByID: b.CreatedByID.String(),
	}
	if b.DepartmentID != nil {
		v := b.DepartmentID.String()
		resp.DepartmentID = &v
	}
	for _, t := range b.Targets {
		resp.EmployeeIDs = append(resp.EmployeeIDs, t.EmployeeID.String())
	}
	return resp
}
