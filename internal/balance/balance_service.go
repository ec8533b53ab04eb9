package balance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// syncEpsilon is the tolerance under which the cached balance is considered
// in sync and left untouched, keeping SyncBalance idempotent on read paths.
var syncEpsilon = decimal.NewFromFloat(0.0001)

// Availability is what an employee can still request in a given year.
type Availability struct {
	Current             decimal.Decimal
	NextYearEntitlement decimal.Decimal
	Total               decimal.Decimal
}

type Service interface {
	EntitlementForYear(ctx context.Context, employeeID string, year int) (Entitlement, error)
	ConsumedDaysForYear(ctx context.Context, employeeID string, year int) (int, error)
	SyncBalance(ctx context.Context, employeeID string, asOf time.Time) (decimal.Decimal, error)
	AvailableForSubmission(ctx context.Context, employeeID string, year int) (Availability, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) EntitlementForYear(ctx context.Context, employeeID string, year int) (Entitlement, error) {
	row, err := s.repo.EmployeeBalanceFields(ctx, employeeID)
	if err != nil {
		return Entitlement{}, err
	}
	return EntitlementForYear(row.EffectiveHireDate(), row.LeaveBalanceAdjustment, year), nil
}

func (s *service) ConsumedDaysForYear(ctx context.Context, employeeID string, year int) (int, error) {
	windows, err := s.repo.PaidConsumingWindows(ctx, employeeID, year, year)
	if err != nil {
		return 0, err
	}

	consumed := 0
	for _, w := range windows {
		consumed += OverlapDays(w.StartDate, w.EndDate, year)
	}
	return consumed, nil
}

// SyncBalance reconciles the cached leave_balance with the value recomputed
// from the source of truth. Overconsumption in the previous year carries over
// as debt against the current year. The write is skipped when the cache is
// already in sync, so calling this on every read path is safe.
func (s *service) SyncBalance(ctx context.Context, employeeID string, asOf time.Time) (decimal.Decimal, error) {
	row, err := s.repo.EmployeeBalanceFields(ctx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}

	year := asOf.UTC().Year()
	hire := row.EffectiveHireDate()

	current := EntitlementForYear(hire, row.LeaveBalanceAdjustment, year)
	previous := EntitlementForYear(hire, row.LeaveBalanceAdjustment, year-1)

	prevConsumed, err := s.ConsumedDaysForYear(ctx, employeeID, year-1)
	if err != nil {
		return decimal.Zero, err
	}

	debt := decimal.NewFromInt(int64(prevConsumed)).Sub(previous.Days)
	if debt.IsNegative() {
		debt = decimal.Zero
	}

	effective := current.Days.Sub(debt).Round(1)
	if effective.IsNegative() {
		effective = decimal.Zero
	}

	if row.LeaveBalance.Sub(effective).Abs().GreaterThan(syncEpsilon) {
		s.logger.Info("leave balance reconciled",
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
			zap.String("cached", row.LeaveBalance.String()),
			zap.String("effective", effective.String()),
			zap.String("carried_debt", debt.String()),
		)
		if err := s.repo.UpdateLeaveBalance(ctx, employeeID, effective); err != nil {
			return decimal.Zero, err
		}
	}

	return effective, nil
}

// AvailableForSubmission reconciles the cached balance as of now, then
// computes the request year's remaining entitlement plus next year's as
// borrowable headroom. The year-scoped math never writes the cache, so a
// submission dated in another year cannot clobber the current-year value.
func (s *service) AvailableForSubmission(ctx context.Context, employeeID string, year int) (Availability, error) {
	if _, err := s.SyncBalance(ctx, employeeID, time.Now().UTC()); err != nil {
		return Availability{}, err
	}

	row, err := s.repo.EmployeeBalanceFields(ctx, employeeID)
	if err != nil {
		return Availability{}, err
	}
	hire := row.EffectiveHireDate()

	entitlement := EntitlementForYear(hire, row.LeaveBalanceAdjustment, year)
	previous := EntitlementForYear(hire, row.LeaveBalanceAdjustment, year-1)

	prevConsumed, err := s.ConsumedDaysForYear(ctx, employeeID, year-1)
	if err != nil {
		return Availability{}, err
	}
	debt := decimal.NewFromInt(int64(prevConsumed)).Sub(previous.Days)
	if debt.IsNegative() {
		debt = decimal.Zero
	}

	consumed, err := s.ConsumedDaysForYear(ctx, employeeID, year)
	if err != nil {
		return Availability{}, err
	}

	current := entitlement.Days.
		Sub(debt).
		Sub(decimal.NewFromInt(int64(consumed))).
		Round(1)
	if current.IsNegative() {
		current = decimal.Zero
	}

	next := EntitlementForYear(hire, row.LeaveBalanceAdjustment, year+1)

	return Availability{
		Current:             current,
		NextYearEntitlement: next.Days,
		Total:               current.Add(next.Days),
	}, nil
}
