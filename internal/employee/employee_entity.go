package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/domain"
)

type Employee struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DepartmentID *uuid.UUID `gorm:"type:uuid;index"`
	ServiceID    *uuid.UUID `gorm:"type:uuid"`

	FullName string                `gorm:"type:varchar(120);not null"`
	Email    string                `gorm:"type:varchar(120);uniqueIndex"`
	Role     domain.Role           `gorm:"type:varchar(20);not null;default:'EMPLOYEE';index:idx_employees_role_status"`
	Status   domain.EmployeeStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_employees_role_status"`
	Gender   domain.Gender         `gorm:"type:varchar(10)"`

	HireDate         *time.Time `gorm:"type:date"`
	CompanyEntryDate *time.Time `gorm:"type:date"`

	// LeaveBalance is a cache of the effective current-year entitlement.
	// It is written only by the balance reconciliation routine.
	LeaveBalance           decimal.Decimal `gorm:"type:numeric(5,1);not null;default:0"`
	LeaveBalanceAdjustment decimal.Decimal `gorm:"type:numeric(5,1);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// EffectiveHireDate is the date seniority and accrual are computed from:
// company entry date when present, else hire date, else nil ("always employed").
func (e *Employee) EffectiveHireDate() *time.Time {
	if e.CompanyEntryDate != nil {
		return e.CompanyEntryDate
	}
	return e.HireDate
}
