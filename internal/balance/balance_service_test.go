package balance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeRepo struct {
	employeeBalanceFieldsFn func(ctx context.Context, employeeID string) (*EmployeeBalanceRow, error)
	paidConsumingWindowsFn  func(ctx context.Context, employeeID string, fromYear, toYear int) ([]RequestWindow, error)
	updateLeaveBalanceFn    func(ctx context.Context, employeeID string, balance decimal.Decimal) error
}

func (f *fakeRepo) EmployeeBalanceFields(ctx context.Context, employeeID string) (*EmployeeBalanceRow, error) {
	return f.employeeBalanceFieldsFn(ctx, employeeID)
}
func (f *fakeRepo) PaidConsumingWindows(ctx context.Context, employeeID string, fromYear, toYear int) ([]RequestWindow, error) {
	return f.paidConsumingWindowsFn(ctx, employeeID, fromYear, toYear)
}
func (f *fakeRepo) UpdateLeaveBalance(ctx context.Context, employeeID string, balance decimal.Decimal) error {
	return f.updateLeaveBalanceFn(ctx, employeeID, balance)
}

func TestSyncBalance_WritesOnlyWhenDrifted(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()
	hire := date(2020, time.January, 1)

	row := &EmployeeBalanceRow{
		ID:           employeeID,
		HireDate:     &hire,
		LeaveBalance: decimal.NewFromInt(10),
	}

	writes := 0
	repo := &fakeRepo{}
	repo.employeeBalanceFieldsFn = func(ctx context.Context, id string) (*EmployeeBalanceRow, error) {
		return row, nil
	}
	repo.paidConsumingWindowsFn = func(ctx context.Context, id string, from, to int) ([]RequestWindow, error) {
		return nil, nil
	}
	repo.updateLeaveBalanceFn = func(ctx context.Context, id string, balance decimal.Decimal) error {
		writes++
		row.LeaveBalance = balance
		return nil
	}

	svc := NewService(repo)
	asOf := date(2025, time.July, 1)

	// Cached 10 vs recomputed 26: one reconciling write.
	got, err := svc.SyncBalance(ctx, employeeID, asOf)
	assert.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(26)), "got %s", got)
	assert.Equal(t, 1, writes)

	// Already in sync: no second write.
	got, err = svc.SyncBalance(ctx, employeeID, asOf)
	assert.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(26)))
	assert.Equal(t, 1, writes)
}

func TestSyncBalance_PriorYearDebt(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()
	hire := date(2024, time.January, 1)

	repo := &fakeRepo{}
	repo.employeeBalanceFieldsFn = func(ctx context.Context, id string) (*EmployeeBalanceRow, error) {
		return &EmployeeBalanceRow{ID: employeeID, HireDate: &hire, LeaveBalance: decimal.Zero}, nil
	}
	// 30 consumed days last year against a 25-day entitlement: 5 days of debt.
	repo.paidConsumingWindowsFn = func(ctx context.Context, id string, from, to int) ([]RequestWindow, error) {
		return []RequestWindow{
			{StartDate: date(2024, time.June, 1), EndDate: date(2024, time.June, 30)},
		}, nil
	}
	var written decimal.Decimal
	repo.updateLeaveBalanceFn = func(ctx context.Context, id string, balance decimal.Decimal) error {
		written = balance
		return nil
	}

	svc := NewService(repo)
	got, err := svc.SyncBalance(ctx, employeeID, date(2025, time.July, 1))
	assert.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(20)), "got %s", got)
	assert.True(t, written.Equal(decimal.NewFromInt(20)))
}

func TestSyncBalance_UnderconsumptionIsNotACredit(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()
	hire := date(2020, time.January, 1)

	repo := &fakeRepo{}
	repo.employeeBalanceFieldsFn = func(ctx context.Context, id string) (*EmployeeBalanceRow, error) {
		return &EmployeeBalanceRow{ID: employeeID, HireDate: &hire, LeaveBalance: decimal.NewFromInt(26)}, nil
	}
	// Only 5 of 26 days used last year; the surplus does not carry forward.
	repo.paidConsumingWindowsFn = func(ctx context.Context, id string, from, to int) ([]RequestWindow, error) {
		return []RequestWindow{
			{StartDate: date(2024, time.June, 1), EndDate: date(2024, time.June, 5)},
		}, nil
	}
	repo.updateLeaveBalanceFn = func(ctx context.Context, id string, balance decimal.Decimal) error {
		t.Fatal("no write expected when cache already matches")
		return nil
	}

	svc := NewService(repo)
	got, err := svc.SyncBalance(ctx, employeeID, date(2025, time.July, 1))
	assert.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(26)), "got %s", got)
}

func TestAvailableForSubmission_BorrowsNextYear(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()
	hire := date(2023, time.March, 1)

	repo := &fakeRepo{}
	repo.employeeBalanceFieldsFn = func(ctx context.Context, id string) (*EmployeeBalanceRow, error) {
		return &EmployeeBalanceRow{ID: employeeID, HireDate: &hire, LeaveBalance: decimal.NewFromInt(25)}, nil
	}
	repo.paidConsumingWindowsFn = func(ctx context.Context, id string, from, to int) ([]RequestWindow, error) {
		if from == 2025 {
			// 10 days already committed this year.
			return []RequestWindow{
				{StartDate: date(2025, time.April, 1), EndDate: date(2025, time.April, 10)},
			}, nil
		}
		return nil, nil
	}
	repo.updateLeaveBalanceFn = func(ctx context.Context, id string, balance decimal.Decimal) error {
		return nil
	}

	svc := NewService(repo)
	avail, err := svc.AvailableForSubmission(ctx, employeeID, 2025)
	assert.NoError(t, err)
	assert.True(t, avail.Current.Equal(decimal.NewFromInt(15)), "current %s", avail.Current)
	assert.True(t, avail.NextYearEntitlement.Equal(decimal.NewFromInt(25)))
	assert.True(t, avail.Total.Equal(decimal.NewFromInt(40)), "total %s", avail.Total)
}

func TestAvailableForSubmission_NextYearDoesNotRewriteCache(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()
	// Seniority long past the top tier, so the entitlement is a stable 33.
	hire := date(1990, time.January, 1)

	writes := 0
	repo := &fakeRepo{}
	repo.employeeBalanceFieldsFn = func(ctx context.Context, id string) (*EmployeeBalanceRow, error) {
		return &EmployeeBalanceRow{ID: employeeID, HireDate: &hire, LeaveBalance: decimal.NewFromInt(33)}, nil
	}
	repo.paidConsumingWindowsFn = func(ctx context.Context, id string, from, to int) ([]RequestWindow, error) {
		return nil, nil
	}
	repo.updateLeaveBalanceFn = func(ctx context.Context, id string, balance decimal.Decimal) error {
		writes++
		return nil
	}

	svc := NewService(repo)
	nextYear := time.Now().UTC().Year() + 1
	avail, err := svc.AvailableForSubmission(ctx, employeeID, nextYear)
	assert.NoError(t, err)

	// The in-sync cache stays untouched even though the request is dated in
	// another year.
	assert.Equal(t, 0, writes)
	assert.True(t, avail.Current.Equal(decimal.NewFromInt(33)), "current %s", avail.Current)
	assert.True(t, avail.NextYearEntitlement.Equal(decimal.NewFromInt(33)))
	assert.True(t, avail.Total.Equal(decimal.NewFromInt(66)), "total %s", avail.Total)
}

func TestConsumedDaysForYear_ClipsToYear(t *testing.T) {
	ctx := context.Background()

	repo := &fakeRepo{}
	repo.paidConsumingWindowsFn = func(ctx context.Context, id string, from, to int) ([]RequestWindow, error) {
		return []RequestWindow{
			{StartDate: date(2025, time.December, 28), EndDate: date(2026, time.January, 3)},
			{StartDate: date(2025, time.June, 2), EndDate: date(2025, time.June, 6)},
		}, nil
	}

	svc := NewService(repo)
	consumed, err := svc.ConsumedDaysForYear(ctx, uuid.New().String(), 2025)
	assert.NoError(t, err)
	assert.Equal(t, 9, consumed)
}
