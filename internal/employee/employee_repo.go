package employee

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, e *Employee) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindAll(ctx context.Context) ([]Employee, error)
	FirstActiveByRole(ctx context.Context, role domain.Role, departmentID *uuid.UUID) (*Employee, error)
	UpdateStatus(ctx context.Context, id string, status domain.EmployeeStatus) error
	UpdateLeaveBalance(ctx context.Context, id string, balance decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var list []Employee
	err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Find(&list).Error
	return list, err
}

// FirstActiveByRole is the directory lookup the routing resolver depends on.
// Ordering by creation date keeps the selection deterministic.
func (r *repository) FirstActiveByRole(ctx context.Context, role domain.Role, departmentID *uuid.UUID) (*Employee, error) {
	db := r.db.WithContext(ctx).
		Where("role = ?", role).
		Where("status = ?", domain.StatusActive)

	if departmentID != nil {
		db = db.Where("department_id = ?", *departmentID)
	}

	var e Employee
	err := db.Order("created_at ASC").First(&e).Error
	return &e, err
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status domain.EmployeeStatus) error {
	return r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) UpdateLeaveBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("id = ?", id).
		Update("leave_balance", balance).Error
}
