package employee

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/balance"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/domain"
	employeeerrors "github.com/DSI-VEDEM/CONGE-sub001/internal/employee/errors"
)

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	UpdateStatus(ctx context.Context, id string, req UpdateEmployeeStatusRequest) (EmployeeResponse, error)
	Profile(ctx context.Context, id string) (ProfileResponse, error)
}

type service struct {
	repo     Repository
	balances balance.Service
	logger   *zap.Logger
}

func NewService(repo Repository, balances balance.Service, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{repo: repo, balances: balances, logger: l}
}

// Create registers a new employee account. Accounts start PENDING; activation
// is an explicit administrative step.
func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	role := domain.Role(req.Role)
	if !role.Valid() {
		return EmployeeResponse{}, employeeerrors.ErrInvalidRole
	}

	e := &Employee{
		ID:       uuid.New(),
		FullName: req.FullName,
		Email:    req.Email,
		Role:     role,
		Status:   domain.StatusPendingApproval,
		Gender:   domain.Gender(req.Gender),
	}

	if req.DepartmentID != nil {
		id, err := uuid.Parse(*req.DepartmentID)
		if err != nil {
			return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
		}
		e.DepartmentID = &id
	}
	if req.ServiceID != nil {
		id, err := uuid.Parse(*req.ServiceID)
		if err != nil {
			return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
		}
		e.ServiceID = &id
	}

	var err error
	if e.HireDate, err = parseOptionalDate(req.HireDate); err != nil {
		return EmployeeResponse{}, err
	}
	if e.CompanyEntryDate, err = parseOptionalDate(req.CompanyEntryDate); err != nil {
		return EmployeeResponse{}, err
	}

	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.logger.Info("employee created",
		zap.String("employee_id", e.ID.String()),
		zap.String("role", string(e.Role)),
	)
	return mapToResponse(*e), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	list, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]EmployeeResponse, len(list))
	for i, e := range list {
		resp[i] = mapToResponse(e)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return EmployeeResponse{}, err
	}
	return mapToResponse(*e), nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateEmployeeStatusRequest) (EmployeeResponse, error) {
	status := domain.EmployeeStatus(req.Status)
	if status != domain.StatusActive && status != domain.StatusRejected {
		return EmployeeResponse{}, employeeerrors.ErrInvalidStatus
	}

	e, err := s.find(ctx, id)
	if err != nil {
		return EmployeeResponse{}, err
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return EmployeeResponse{}, err
	}
	e.Status = status

	s.logger.Info("employee status updated",
		zap.String("employee_id", id),
		zap.String("status", string(status)),
	)
	return mapToResponse(*e), nil
}

// Profile returns the employee with a freshly reconciled balance and the
// availability breakdown. The cached balance is reconciled on every call
// because it is a cache, not a source of truth.
func (s *service) Profile(ctx context.Context, id string) (ProfileResponse, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return ProfileResponse{}, err
	}

	now := time.Now().UTC()
	if _, err := s.balances.SyncBalance(ctx, id, now); err != nil {
		return ProfileResponse{}, err
	}

	// Re-read: reconciliation may have rewritten the cached balance.
	e, err = s.find(ctx, id)
	if err != nil {
		return ProfileResponse{}, err
	}

	ent, err := s.balances.EntitlementForYear(ctx, id, now.Year())
	if err != nil {
		return ProfileResponse{}, err
	}
	consumed, err := s.balances.ConsumedDaysForYear(ctx, id, now.Year())
	if err != nil {
		return ProfileResponse{}, err
	}
	avail, err := s.balances.AvailableForSubmission(ctx, id, now.Year())
	if err != nil {
		return ProfileResponse{}, err
	}

	return ProfileResponse{
		Employee:          mapToResponse(*e),
		EntitlementDays:   ent.Days.String(),
		ConsumedDays:      consumed,
		AvailableDays:     avail.Current.String(),
		AvailableWithNext: avail.Total.String(),
		SeniorityYears:    ent.SeniorityYears,
	}, nil
}

func (s *service) find(ctx context.Context, id string) (*Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, employeeerrors.ErrInvalidEmployeeID
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeerrors.ErrEmployeeNotFound
		}
		return nil, err
	}
	return e, nil
}

func parseOptionalDate(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *v)
	if err != nil {
		return nil, employeeerrors.ErrInvalidHireDate
	}
	return &t, nil
}

func mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:           e.ID.String(),
		FullName:     e.FullName,
		Email:        e.Email,
		Role:         string(e.Role),
		Status:       string(e.Status),
		Gender:       string(e.Gender),
		LeaveBalance: e.LeaveBalance.String(),
	}
	if e.DepartmentID != nil {
		v := e.DepartmentID.String()
		resp.DepartmentID = &v
	}
	if e.ServiceID != nil {
		v := e.ServiceID.String()
		resp.ServiceID = &v
	}
	if e.HireDate != nil {
		v := e.HireDate.Format("2006-01-02")
		resp.HireDate = &v
	}
	if e.CompanyEntryDate != nil {
		v := e.CompanyEntryDate.Format("2006-01-02")
		resp.CompanyEntryDate = &v
	}
	return resp
}
