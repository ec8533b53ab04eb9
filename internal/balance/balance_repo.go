package balance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EmployeeBalanceRow is the slice of the employee row the engine needs.
type EmployeeBalanceRow struct {
	ID                     string
	HireDate               *time.Time
	CompanyEntryDate       *time.Time
	LeaveBalance           decimal.Decimal
	LeaveBalanceAdjustment decimal.Decimal
}

// EffectiveHireDate mirrors the employee entity rule: company entry date
// wins, hire date is the fallback, nil means "always employed".
func (r EmployeeBalanceRow) EffectiveHireDate() *time.Time {
	if r.CompanyEntryDate != nil {
		return r.CompanyEntryDate
	}
	return r.HireDate
}

// RequestWindow is a consuming leave request window, already filtered to the
// paid categories and the in-flight/approved statuses.
type RequestWindow struct {
	StartDate time.Time
	EndDate   time.Time
}

type Repository interface {
	EmployeeBalanceFields(ctx context.Context, employeeID string) (*EmployeeBalanceRow, error)
	PaidConsumingWindows(ctx context.Context, employeeID string, fromYear, toYear int) ([]RequestWindow, error)
	UpdateLeaveBalance(ctx context.Context, employeeID string, balance decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) EmployeeBalanceFields(ctx context.Context, employeeID string) (*EmployeeBalanceRow, error) {
	var row EmployeeBalanceRow
	err := r.db.WithContext(ctx).
		Table("employees").
		Select("id, hire_date, company_entry_date, leave_balance, leave_balance_adjustment").
		Where("id = ?", employeeID).
		Where("deleted_at IS NULL").
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// PaidConsumingWindows lists the windows of SUBMITTED/PENDING/APPROVED paid
// requests touching [fromYear, toYear]. Unpaid and menstrual categories never
// consume the entitlement, so they are excluded here.
func (r *repository) PaidConsumingWindows(ctx context.Context, employeeID string, fromYear, toYear int) ([]RequestWindow, error) {
	rangeStart := time.Date(fromYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(toYear, time.December, 31, 0, 0, 0, 0, time.UTC)

	var windows []RequestWindow
	err := r.db.WithContext(ctx).
		Table("leave_requests").
		Select("start_date, end_date").
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{"SUBMITTED", "PENDING", "APPROVED"}).
		Where("type IN ?", []string{"ANNUAL_PAID", "EXCEPTIONAL_PAID", "LEGACY_PAID", "LEGACY_RTT"}).
		Where("end_date >= ? AND start_date <= ?", rangeStart, rangeEnd).
		Find(&windows).Error
	return windows, err
}

func (r *repository) UpdateLeaveBalance(ctx context.Context, employeeID string, balance decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Update("leave_balance", balance).Error
}
