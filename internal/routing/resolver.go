// Package routing selects the employee who must act next on a leave request.
// The rules are fixed policy over the role hierarchy; the only collaborator
// is a directory lookup, injected so the resolver is testable with fakes.
package routing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/domain"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/employee"
	routingerrors "github.com/DSI-VEDEM/CONGE-sub001/internal/routing/errors"
)

// EmployeeDirectory is the single lookup the resolver needs. The employee
// repository satisfies it.
type EmployeeDirectory interface {
	FirstActiveByRole(ctx context.Context, role domain.Role, departmentID *uuid.UUID) (*employee.Employee, error)
}

// Assignment is the outcome of initial routing. CopyToCEO is non-nil when a
// manager submits: their requests are visible to the CEO from the start,
// without skipping the accountant's procedural review.
type Assignment struct {
	Assignee  *employee.Employee
	CopyToCEO *employee.Employee
}

type Resolver struct {
	dir    EmployeeDirectory
	logger *zap.Logger
}

func NewResolver(dir EmployeeDirectory, logger ...*zap.Logger) *Resolver {
	l := zap.L().Named("routing.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("routing.resolver")
	}
	return &Resolver{dir: dir, logger: l}
}

// InitialAssignee routes a fresh submission by the requester's role.
func (r *Resolver) InitialAssignee(ctx context.Context, requester *employee.Employee) (Assignment, error) {
	switch requester.Role {
	case domain.RoleEmployee, domain.RoleDeptHead, domain.RoleServiceHead:
		assignee, err := r.lookup(ctx, domain.RoleAccountant, nil)
		if err != nil {
			return Assignment{}, err
		}
		if err := guardAssignee(requester, assignee); err != nil {
			return Assignment{}, err
		}

		out := Assignment{Assignee: assignee}
		if requester.Role.IsManager() {
			// Early CEO visibility for manager requests; absence of an
			// active CEO is not an error here.
			ceo, err := r.dir.FirstActiveByRole(ctx, domain.RoleCEO, nil)
			if err == nil && ceo.ID != requester.ID {
				out.CopyToCEO = ceo
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return Assignment{}, err
			}
		}
		return out, nil

	case domain.RoleAccountant:
		assignee, err := r.lookup(ctx, domain.RoleCEO, nil)
		if err != nil {
			return Assignment{}, err
		}
		if err := guardAssignee(requester, assignee); err != nil {
			return Assignment{}, err
		}
		return Assignment{Assignee: assignee}, nil

	case domain.RoleCEO:
		return Assignment{}, routingerrors.ErrCEOCannotSubmit
	}

	return Assignment{}, routingerrors.ErrNoEligibleAssignee
}

// EscalationTarget resolves the next assignee when the current one escalates.
// toRole selects among the allowed destinations; when nil the role-implied
// default applies.
func (r *Resolver) EscalationTarget(
	ctx context.Context,
	requester *employee.Employee,
	acting *employee.Employee,
	toRole *domain.Role,
) (*employee.Employee, error) {
	target, departmentID, err := escalationDestination(requester, acting, toRole)
	if err != nil {
		return nil, err
	}

	assignee, err := r.lookup(ctx, target, departmentID)
	if err != nil {
		return nil, err
	}
	if assignee.ID == acting.ID {
		return nil, routingerrors.ErrSelfEscalation
	}
	if err := guardAssignee(requester, assignee); err != nil {
		return nil, err
	}

	r.logger.Debug("escalation resolved",
		zap.String("acting_role", string(acting.Role)),
		zap.String("target_role", string(target)),
		zap.String("assignee_id", assignee.ID.String()),
	)
	return assignee, nil
}

// escalationDestination applies the routing table: which roles the acting
// assignee may escalate to, given who submitted the request.
func escalationDestination(
	requester *employee.Employee,
	acting *employee.Employee,
	toRole *domain.Role,
) (domain.Role, *uuid.UUID, error) {
	switch acting.Role {
	case domain.RoleAccountant:
		if requester.Role.IsManager() {
			if toRole != nil && *toRole != domain.RoleCEO {
				return "", nil, routingerrors.ErrInvalidEscalationTarget
			}
			return domain.RoleCEO, nil, nil
		}
		// Requests from plain employees go to their department head by
		// default; the CEO is the explicit alternative.
		if toRole == nil || *toRole == domain.RoleDeptHead {
			return domain.RoleDeptHead, requester.DepartmentID, nil
		}
		if *toRole == domain.RoleCEO {
			return domain.RoleCEO, nil, nil
		}
		return "", nil, routingerrors.ErrInvalidEscalationTarget

	case domain.RoleDeptHead:
		if toRole == nil || *toRole == domain.RoleServiceHead {
			return domain.RoleServiceHead, acting.DepartmentID, nil
		}
		if *toRole == domain.RoleCEO {
			return domain.RoleCEO, nil, nil
		}
		return "", nil, routingerrors.ErrInvalidEscalationTarget

	case domain.RoleServiceHead:
		if toRole != nil && *toRole != domain.RoleCEO {
			return "", nil, routingerrors.ErrInvalidEscalationTarget
		}
		return domain.RoleCEO, nil, nil
	}

	return "", nil, routingerrors.ErrInvalidEscalationTarget
}

func (r *Resolver) lookup(ctx context.Context, role domain.Role, departmentID *uuid.UUID) (*employee.Employee, error) {
	e, err := r.dir.FirstActiveByRole(ctx, role, departmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("no eligible assignee", zap.String("role", string(role)))
			return nil, routingerrors.ErrNoEligibleAssignee
		}
		return nil, err
	}
	return e, nil
}

// guardAssignee enforces the no-self-approval invariant: the owner of a
// request can never become its assignee.
func guardAssignee(requester, assignee *employee.Employee) error {
	if assignee.ID == requester.ID {
		return routingerrors.ErrNoEligibleAssignee
	}
	return nil
}
