package leave

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/balance"
	blackouterrors "github.com/DSI-VEDEM/CONGE-sub001/internal/blackout/errors"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/domain"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/employee"
	leaveerrors "github.com/DSI-VEDEM/CONGE-sub001/internal/leave/errors"
	kafkaout "github.com/DSI-VEDEM/CONGE-sub001/internal/messaging/kafka"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/routing"
	routingerrors "github.com/DSI-VEDEM/CONGE-sub001/internal/routing/errors"
)

type fakeRepo struct {
	createFn                        func(ctx context.Context, r *LeaveRequest) error
	findByIDForUpdateFn             func(ctx context.Context, id string) (*LeaveRequest, error)
	updateStateFn                   func(ctx context.Context, r *LeaveRequest) error
	createDecisionFn                func(ctx context.Context, d *LeaveDecision) error
	findByIDFn                      func(ctx context.Context, id string) (*LeaveRequest, error)
	findPendingByAssigneeFn         func(ctx context.Context, assigneeID string) ([]LeaveRequest, error)
	findOverdueManagerAssignmentsFn func(ctx context.Context, cutoff time.Time) ([]LeaveRequest, error)
	findByFilterFn                  func(ctx context.Context, filter HistoryFilter) ([]LeaveRequest, int64, error)
	listDecisionsByRequestFn        func(ctx context.Context, requestID string) ([]LeaveDecision, error)
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }
func (f *fakeRepo) Create(ctx context.Context, r *LeaveRequest) error {
	return f.createFn(ctx, r)
}
func (f *fakeRepo) FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	return f.findByIDForUpdateFn(ctx, id)
}
func (f *fakeRepo) UpdateState(ctx context.Context, r *LeaveRequest) error {
	return f.updateStateFn(ctx, r)
}
func (f *fakeRepo) CreateDecision(ctx context.Context, d *LeaveDecision) error {
	return f.createDecisionFn(ctx, d)
}
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeRepo) FindPendingByAssignee(ctx context.Context, assigneeID string) ([]LeaveRequest, error) {
	return f.findPendingByAssigneeFn(ctx, assigneeID)
}
func (f *fakeRepo) FindOverdueManagerAssignments(ctx context.Context, cutoff time.Time) ([]LeaveRequest, error) {
	return f.findOverdueManagerAssignmentsFn(ctx, cutoff)
}
func (f *fakeRepo) FindByFilter(ctx context.Context, filter HistoryFilter) ([]LeaveRequest, int64, error) {
	return f.findByFilterFn(ctx, filter)
}
func (f *fakeRepo) ListDecisionsByRequest(ctx context.Context, requestID string) ([]LeaveDecision, error) {
	return f.listDecisionsByRequestFn(ctx, requestID)
}

type fakeOutbox struct {
	events []kafkaout.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafkaout.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafkaout.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafkaout.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id, reason string) error {
	return nil
}

type fakeEmployees struct {
	byID map[string]*employee.Employee
}

func (f *fakeEmployees) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

type fakeBalances struct {
	total decimal.Decimal
}

func (f *fakeBalances) EntitlementForYear(ctx context.Context, employeeID string, year int) (balance.Entitlement, error) {
	return balance.Entitlement{}, nil
}
func (f *fakeBalances) ConsumedDaysForYear(ctx context.Context, employeeID string, year int) (int, error) {
	return 0, nil
}
func (f *fakeBalances) SyncBalance(ctx context.Context, employeeID string, asOf time.Time) (decimal.Decimal, error) {
	return f.total, nil
}
func (f *fakeBalances) AvailableForSubmission(ctx context.Context, employeeID string, year int) (balance.Availability, error) {
	return balance.Availability{Current: f.total, Total: f.total}, nil
}

type fakeBlackouts struct {
	blocked bool
}

func (f *fakeBlackouts) HasBlockedRange(ctx context.Context, employeeID string, departmentID *uuid.UUID, startDate, endDate time.Time) (bool, error) {
	return f.blocked, nil
}

type fakeResolver struct {
	initialFn  func(ctx context.Context, requester *employee.Employee) (routing.Assignment, error)
	escalateFn func(ctx context.Context, requester, acting *employee.Employee, toRole *domain.Role) (*employee.Employee, error)
}

func (f *fakeResolver) InitialAssignee(ctx context.Context, requester *employee.Employee) (routing.Assignment, error) {
	return f.initialFn(ctx, requester)
}
func (f *fakeResolver) EscalationTarget(ctx context.Context, requester, acting *employee.Employee, toRole *domain.Role) (*employee.Employee, error) {
	return f.escalateFn(ctx, requester, acting, toRole)
}

type fakeCounter struct {
	next int64
}

func (f *fakeCounter) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

func activeEmployee(role domain.Role) *employee.Employee {
	return &employee.Employee{
		ID:     uuid.New(),
		Role:   role,
		Status: domain.StatusActive,
		Gender: domain.GenderMale,
	}
}

type fixture struct {
	db        *sql.DB
	mock      sqlmock.Sqlmock
	repo      *fakeRepo
	outbox    *fakeOutbox
	employees *fakeEmployees
	balances  *fakeBalances
	blackouts *fakeBlackouts
	resolver  *fakeResolver
	svc       Service
}

func newFixture(t *testing.T) *fixture {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:        db,
		mock:      mock,
		repo:      &fakeRepo{},
		outbox:    &fakeOutbox{},
		employees: &fakeEmployees{byID: map[string]*employee.Employee{}},
		balances:  &fakeBalances{total: decimal.NewFromInt(25)},
		blackouts: &fakeBlackouts{},
		resolver:  &fakeResolver{},
	}
	f.svc = NewService(db, Deps{
		Repo:      f.repo,
		Outbox:    f.outbox,
		Employees: f.employees,
		Balances:  f.balances,
		Blackouts: f.blackouts,
		Resolver:  f.resolver,
		Counter:   &fakeCounter{},
	})
	return f
}

func (f *fixture) addEmployee(e *employee.Employee) {
	f.employees.byID[e.ID.String()] = e
}

func TestSubmit_EmployeeHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	requester := activeEmployee(domain.RoleEmployee)
	accountant := activeEmployee(domain.RoleAccountant)
	f.addEmployee(requester)
	f.resolver.initialFn = func(ctx context.Context, r *employee.Employee) (routing.Assignment, error) {
		return routing.Assignment{Assignee: accountant}, nil
	}

	var created *LeaveRequest
	var decisions []LeaveDecision
	f.repo.createFn = func(ctx context.Context, r *LeaveRequest) error { created = r; return nil }
	f.repo.createDecisionFn = func(ctx context.Context, d *LeaveDecision) error {
		decisions = append(decisions, *d)
		return nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Submit(ctx, requester.ID.String(), CreateLeaveRequest{
		Type:      "ANNUAL_PAID",
		StartDate: "2025-09-01",
		EndDate:   "2025-09-05",
		Reason:    "vacation",
	})
	assert.NoError(t, err)

	assert.Equal(t, StatusSubmitted, created.Status)
	assert.Equal(t, accountant.ID, *created.CurrentAssigneeID)
	assert.Nil(t, created.DeptHeadAssignedAt)
	assert.Nil(t, created.ReachedCeoAt)
	assert.Regexp(t, `^LR-2025-\d{5}$`, created.Reference)

	assert.Len(t, decisions, 1)
	assert.Equal(t, DecisionSubmit, decisions[0].Type)
	assert.Equal(t, requester.ID, decisions[0].ActorID)

	assert.Len(t, f.outbox.events, 1)
	assert.Equal(t, created.ID.String(), f.outbox.events[0].AggregateID)

	assert.Equal(t, 5, resp.TotalDays)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSubmit_ManagerCopiesCEO(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	requester := activeEmployee(domain.RoleDeptHead)
	accountant := activeEmployee(domain.RoleAccountant)
	ceo := activeEmployee(domain.RoleCEO)
	f.addEmployee(requester)
	f.resolver.initialFn = func(ctx context.Context, r *employee.Employee) (routing.Assignment, error) {
		return routing.Assignment{Assignee: accountant, CopyToCEO: ceo}, nil
	}

	var created *LeaveRequest
	var decisions []LeaveDecision
	f.repo.createFn = func(ctx context.Context, r *LeaveRequest) error { created = r; return nil }
	f.repo.createDecisionFn = func(ctx context.Context, d *LeaveDecision) error {
		decisions = append(decisions, *d)
		return nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err := f.svc.Submit(ctx, requester.ID.String(), CreateLeaveRequest{
		Type:      "ANNUAL_PAID",
		StartDate: "2025-09-01",
		EndDate:   "2025-09-02",
	})
	assert.NoError(t, err)

	// The assignee stays the accountant; the CEO copy is a ledger entry plus
	// the visibility stamp.
	assert.Equal(t, accountant.ID, *created.CurrentAssigneeID)
	assert.NotNil(t, created.ReachedCeoAt)

	assert.Len(t, decisions, 2)
	assert.Equal(t, DecisionEscalate, decisions[1].Type)
	assert.Equal(t, ceo.ID, *decisions[1].ToEmployeeID)
}

func TestSubmit_CEOForbidden(t *testing.T) {
	f := newFixture(t)

	ceo := activeEmployee(domain.RoleCEO)
	f.addEmployee(ceo)

	_, err := f.svc.Submit(context.Background(), ceo.ID.String(), CreateLeaveRequest{
		Type:      "ANNUAL_PAID",
		StartDate: "2025-09-01",
		EndDate:   "2025-09-02",
	})
	assert.True(t, errors.Is(err, routingerrors.ErrCEOCannotSubmit))
}

func TestSubmit_InactiveRequester(t *testing.T) {
	f := newFixture(t)

	requester := activeEmployee(domain.RoleEmployee)
	requester.Status = domain.StatusPendingApproval
	f.addEmployee(requester)

	_, err := f.svc.Submit(context.Background(), requester.ID.String(), CreateLeaveRequest{
		Type:      "ANNUAL_PAID",
		StartDate: "2025-09-01",
		EndDate:   "2025-09-02",
	})
	assert.True(t, errors.Is(err, leaveerrors.ErrRequesterNotActive))
}

func TestSubmit_BalanceExceeded(t *testing.T) {
	f := newFixture(t)
	f.balances.total = decimal.NewFromInt(3)

	requester := activeEmployee(domain.RoleEmployee)
	f.addEmployee(requester)

	_, err := f.svc.Submit(context.Background(), requester.ID.String(), CreateLeaveRequest{
		Type:      "ANNUAL_PAID",
		StartDate: "2025-09-01",
		EndDate:   "2025-09-05",
	})
	assert.True(t, errors.Is(err, leaveerrors.ErrBalanceExceeded))
}

func TestSubmit_UnpaidSkipsBalanceCheck(t *testing.T) {
	f := newFixture(t)
	f.balances.total = decimal.Zero

	requester := activeEmployee(domain.RoleEmployee)
	accountant := activeEmployee(domain.RoleAccountant)
	f.addEmployee(requester)
	f.resolver.initialFn = func(ctx context.Context, r *employee.Employee) (routing.Assignment, error) {
		return routing.Assignment{Assignee: accountant}, nil
	}
	f.repo.createFn = func(ctx context.Context, r *LeaveRequest) error { return nil }
	f.repo.createDecisionFn = func(ctx context.Context, d *LeaveDecision) error { return nil }

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err := f.svc.Submit(context.Background(), requester.ID.String(), CreateLeaveRequest{
		Type:      "UNPAID",
		StartDate: "2025-09-01",
		EndDate:   "2025-09-30",
	})
	assert.NoError(t, err)
}

func TestSubmit_GenderRestrictedType(t *testing.T) {
	f := newFixture(t)

	requester := activeEmployee(domain.RoleEmployee)
	f.addEmployee(requester)

	_, err := f.svc.Submit(context.Background(), requester.ID.String(), CreateLeaveRequest{
		Type:      "MATERNITY",
		StartDate: "2025-09-01",
		EndDate:   "2025-09-02",
	})
	assert.True(t, errors.Is(err, leaveerrors.ErrGenderRestrictedType))
}

func TestSubmit_BlackoutBlocksRange(t *testing.T) {
	f := newFixture(t)
	f.blackouts.blocked = true

	requester := activeEmployee(domain.RoleEmployee)
	f.addEmployee(requester)

	_, err := f.svc.Submit(context.Background(), requester.ID.String(), CreateLeaveRequest{
		Type:      "ANNUAL_PAID",
		StartDate: "2025-09-01",
		EndDate:   "2025-09-02",
	})
	assert.True(t, errors.Is(err, blackouterrors.ErrDateRangeBlocked))
}

func TestSubmit_LegacyTypeNotSubmittable(t *testing.T) {
	f := newFixture(t)

	requester := activeEmployee(domain.RoleEmployee)
	f.addEmployee(requester)

	_, err := f.svc.Submit(context.Background(), requester.ID.String(), CreateLeaveRequest{
		Type:      "LEGACY_PAID",
		StartDate: "2025-09-01",
		EndDate:   "2025-09-02",
	})
	assert.True(t, errors.Is(err, leaveerrors.ErrUnknownLeaveType))
}

func pendingRequest(employeeID, assigneeID uuid.UUID) *LeaveRequest {
	now := time.Now().UTC()
	return &LeaveRequest{
		ID:                uuid.New(),
		Reference:         "LR-2025-00042",
		EmployeeID:        employeeID,
		Type:              domain.LeaveAnnualPaid,
		StartDate:         now.AddDate(0, 1, 0),
		EndDate:           now.AddDate(0, 1, 4),
		Status:            StatusSubmitted,
		CurrentAssigneeID: &assigneeID,
		CreatedAt:         now,
	}
}

func TestApprove_ByCurrentAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	requester := activeEmployee(domain.RoleEmployee)
	accountant := activeEmployee(domain.RoleAccountant)
	f.addEmployee(requester)
	f.addEmployee(accountant)

	request := pendingRequest(requester.ID, accountant.ID)
	f.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		return request, nil
	}
	var updated *LeaveRequest
	f.repo.updateStateFn = func(ctx context.Context, r *LeaveRequest) error { updated = r; return nil }
	f.repo.createDecisionFn = func(ctx context.Context, d *LeaveDecision) error { return nil }

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Approve(ctx, accountant.ID.String(), request.ID.String(), "ok")
	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, resp.Status)
	assert.Nil(t, updated.CurrentAssigneeID)
	assert.Nil(t, updated.DeptHeadAssignedAt)
	assert.Len(t, f.outbox.events, 1)
}

func TestApprove_SelfDecisionRejected(t *testing.T) {
	f := newFixture(t)

	requester := activeEmployee(domain.RoleAccountant)
	f.addEmployee(requester)

	// The requester somehow holds their own request.
	request := pendingRequest(requester.ID, requester.ID)
	f.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		return request, nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.Approve(context.Background(), requester.ID.String(), request.ID.String(), "")
	assert.True(t, errors.Is(err, leaveerrors.ErrSelfDecision))
}

func TestApprove_NotAssigneeRejected(t *testing.T) {
	f := newFixture(t)

	requester := activeEmployee(domain.RoleEmployee)
	accountant := activeEmployee(domain.RoleAccountant)
	outsider := activeEmployee(domain.RoleDeptHead)
	f.addEmployee(requester)
	f.addEmployee(outsider)

	request := pendingRequest(requester.ID, accountant.ID)
	f.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		return request, nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.Approve(context.Background(), outsider.ID.String(), request.ID.String(), "")
	assert.True(t, errors.Is(err, leaveerrors.ErrNotCurrentAssignee))
}

func TestApprove_CEOAfterVisibility(t *testing.T) {
	f := newFixture(t)

	requester := activeEmployee(domain.RoleDeptHead)
	accountant := activeEmployee(domain.RoleAccountant)
	ceo := activeEmployee(domain.RoleCEO)
	f.addEmployee(requester)
	f.addEmployee(ceo)

	// Assigned to the accountant but already visible to the CEO.
	request := pendingRequest(requester.ID, accountant.ID)
	now := time.Now().UTC()
	request.ReachedCeoAt = &now
	f.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		return request, nil
	}
	f.repo.updateStateFn = func(ctx context.Context, r *LeaveRequest) error { return nil }
	f.repo.createDecisionFn = func(ctx context.Context, d *LeaveDecision) error { return nil }

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Approve(context.Background(), ceo.ID.String(), request.ID.String(), "final")
	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, resp.Status)
	// CEO visibility survives the terminal transition.
	assert.NotNil(t, resp.ReachedCeoAt)
}

func TestDecide_TerminalRequestRejected(t *testing.T) {
	f := newFixture(t)

	requester := activeEmployee(domain.RoleEmployee)
	accountant := activeEmployee(domain.RoleAccountant)
	f.addEmployee(requester)
	f.addEmployee(accountant)

	request := pendingRequest(requester.ID, accountant.ID)
	request.Status = StatusRejected
	f.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		return request, nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.Approve(context.Background(), accountant.ID.String(), request.ID.String(), "")
	assert.True(t, errors.Is(err, leaveerrors.ErrRequestAlreadyFinal))
}

func TestCancel_OnlyRequester(t *testing.T) {
	f := newFixture(t)

	requester := activeEmployee(domain.RoleEmployee)
	accountant := activeEmployee(domain.RoleAccountant)

	request := pendingRequest(requester.ID, accountant.ID)
	f.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		return request, nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.Cancel(context.Background(), accountant.ID.String(), request.ID.String(), "")
	assert.True(t, errors.Is(err, leaveerrors.ErrOnlyRequesterMayCancel))
}

func TestCancel_ByRequester(t *testing.T) {
	f := newFixture(t)

	requester := activeEmployee(domain.RoleEmployee)
	accountant := activeEmployee(domain.RoleAccountant)

	request := pendingRequest(requester.ID, accountant.ID)
	f.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		return request, nil
	}
	var updated *LeaveRequest
	f.repo.updateStateFn = func(ctx context.Context, r *LeaveRequest) error { updated = r; return nil }
	var decision *LeaveDecision
	f.repo.createDecisionFn = func(ctx context.Context, d *LeaveDecision) error { decision = d; return nil }

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Cancel(context.Background(), requester.ID.String(), request.ID.String(), "changed plans")
	assert.NoError(t, err)
	assert.Equal(t, StatusCanceled, resp.Status)
	assert.Nil(t, updated.CurrentAssigneeID)
	assert.Equal(t, DecisionCancel, decision.Type)
	assert.Equal(t, requester.ID, decision.ActorID)
}

func TestEscalate_ToManagerStampsAssignment(t *testing.T) {
	f := newFixture(t)

	requester := activeEmployee(domain.RoleEmployee)
	accountant := activeEmployee(domain.RoleAccountant)
	deptHead := activeEmployee(domain.RoleDeptHead)
	f.addEmployee(requester)
	f.addEmployee(accountant)

	request := pendingRequest(requester.ID, accountant.ID)
	f.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		return request, nil
	}
	var updated *LeaveRequest
	f.repo.updateStateFn = func(ctx context.Context, r *LeaveRequest) error { updated = r; return nil }
	var decision *LeaveDecision
	f.repo.createDecisionFn = func(ctx context.Context, d *LeaveDecision) error { decision = d; return nil }
	f.resolver.escalateFn = func(ctx context.Context, requester, acting *employee.Employee, toRole *domain.Role) (*employee.Employee, error) {
		return deptHead, nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.svc.Escalate(context.Background(), accountant.ID.String(), request.ID.String(), nil, "needs manager sign-off")
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, resp.Status)
	assert.Equal(t, deptHead.ID, *updated.CurrentAssigneeID)
	assert.NotNil(t, updated.DeptHeadAssignedAt)
	assert.Nil(t, updated.ReachedCeoAt)
	assert.Equal(t, deptHead.ID, *decision.ToEmployeeID)
}

func TestEscalate_ToCEOStampsVisibility(t *testing.T) {
	f := newFixture(t)

	requester := activeEmployee(domain.RoleEmployee)
	serviceHead := activeEmployee(domain.RoleServiceHead)
	ceo := activeEmployee(domain.RoleCEO)
	f.addEmployee(requester)
	f.addEmployee(serviceHead)

	request := pendingRequest(requester.ID, serviceHead.ID)
	f.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		return request, nil
	}
	var updated *LeaveRequest
	f.repo.updateStateFn = func(ctx context.Context, r *LeaveRequest) error { updated = r; return nil }
	f.repo.createDecisionFn = func(ctx context.Context, d *LeaveDecision) error { return nil }
	f.resolver.escalateFn = func(ctx context.Context, requester, acting *employee.Employee, toRole *domain.Role) (*employee.Employee, error) {
		return ceo, nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err := f.svc.Escalate(context.Background(), serviceHead.ID.String(), request.ID.String(), nil, "")
	assert.NoError(t, err)
	assert.NotNil(t, updated.ReachedCeoAt)
	assert.Nil(t, updated.DeptHeadAssignedAt)
}

func TestEscalate_OnlyCurrentAssignee(t *testing.T) {
	f := newFixture(t)

	requester := activeEmployee(domain.RoleEmployee)
	accountant := activeEmployee(domain.RoleAccountant)
	outsider := activeEmployee(domain.RoleDeptHead)
	f.addEmployee(requester)
	f.addEmployee(outsider)

	request := pendingRequest(requester.ID, accountant.ID)
	f.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		return request, nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.Escalate(context.Background(), outsider.ID.String(), request.ID.String(), nil, "")
	assert.True(t, errors.Is(err, leaveerrors.ErrNotCurrentAssignee))
}

func TestReconcileOverdue_AutoApprovesStaleManagerRequests(t *testing.T) {
	f := newFixture(t)

	requester := activeEmployee(domain.RoleEmployee)
	deptHead := activeEmployee(domain.RoleDeptHead)

	stale := pendingRequest(requester.ID, deptHead.ID)
	stale.Status = StatusPending
	assignedAt := time.Now().UTC().Add(-6 * 24 * time.Hour)
	stale.DeptHeadAssignedAt = &assignedAt

	f.repo.findOverdueManagerAssignmentsFn = func(ctx context.Context, cutoff time.Time) ([]LeaveRequest, error) {
		return []LeaveRequest{*stale}, nil
	}
	f.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		return stale, nil
	}
	var updated *LeaveRequest
	f.repo.updateStateFn = func(ctx context.Context, r *LeaveRequest) error { updated = r; return nil }
	var decision *LeaveDecision
	f.repo.createDecisionFn = func(ctx context.Context, d *LeaveDecision) error { decision = d; return nil }

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	approved, err := f.svc.ReconcileOverdue(context.Background(), uuid.New().String())
	assert.NoError(t, err)
	assert.Equal(t, 1, approved)

	assert.Equal(t, StatusApproved, updated.Status)
	// The decision is attributed to the manager who sat on it.
	assert.Equal(t, deptHead.ID, decision.ActorID)
	assert.Equal(t, DecisionApprove, decision.Type)
	assert.Contains(t, decision.Comment, "approved automatically after 5 days")
}

func TestReconcileOverdue_RecheckUnderLockSkipsResolved(t *testing.T) {
	f := newFixture(t)

	requester := activeEmployee(domain.RoleEmployee)
	deptHead := activeEmployee(domain.RoleDeptHead)

	stale := pendingRequest(requester.ID, deptHead.ID)
	assignedAt := time.Now().UTC().Add(-6 * 24 * time.Hour)
	stale.DeptHeadAssignedAt = &assignedAt

	f.repo.findOverdueManagerAssignmentsFn = func(ctx context.Context, cutoff time.Time) ([]LeaveRequest, error) {
		return []LeaveRequest{*stale}, nil
	}
	// By the time the row lock is taken, someone already rejected it.
	resolved := *stale
	resolved.Status = StatusRejected
	f.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		return &resolved, nil
	}
	f.repo.updateStateFn = func(ctx context.Context, r *LeaveRequest) error {
		t.Fatal("no write expected for an already resolved request")
		return nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	approved, err := f.svc.ReconcileOverdue(context.Background(), uuid.New().String())
	assert.NoError(t, err)
	assert.Equal(t, 1, approved)
}

func TestInbox_SweepsBeforeListing(t *testing.T) {
	f := newFixture(t)

	deptHead := activeEmployee(domain.RoleDeptHead)
	swept := false
	f.repo.findOverdueManagerAssignmentsFn = func(ctx context.Context, cutoff time.Time) ([]LeaveRequest, error) {
		swept = true
		return nil, nil
	}
	f.repo.findPendingByAssigneeFn = func(ctx context.Context, assigneeID string) ([]LeaveRequest, error) {
		assert.True(t, swept, "overdue sweep must run before the inbox query")
		return []LeaveRequest{*pendingRequest(uuid.New(), deptHead.ID)}, nil
	}

	list, err := f.svc.Inbox(context.Background(), deptHead.ID.String())
	assert.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetByID_NotFound(t *testing.T) {
	f := newFixture(t)

	f.repo.findByIDFn = func(ctx context.Context, id string) (*LeaveRequest, error) {
		return nil, gorm.ErrRecordNotFound
	}

	_, err := f.svc.GetByID(context.Background(), uuid.New().String())
	assert.True(t, errors.Is(err, leaveerrors.ErrLeaveNotFound))
}
