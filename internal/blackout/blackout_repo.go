package blackout

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, b *Blackout) error
	FindAll(ctx context.Context) ([]Blackout, error)
	FindByID(ctx context.Context, id string) (*Blackout, error)
	Delete(ctx context.Context, id string) error
	FindOverlapping(ctx context.Context, startDate, endDate time.Time) ([]Blackout, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Blackout) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Blackout, error) {
	var list []Blackout
	err := r.db.WithContext(ctx).
		Preload("Targets").
		Order("start_date DESC").
		Find(&list).Error
	return list, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Blackout, error) {
	var b Blackout
	err := r.db.WithContext(ctx).
		Preload("Targets").
		First(&b, "id = ?", id).Error
	return &b, err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Blackout{}, "id = ?", id).Error
}

func (r *repository) FindOverlapping(ctx context.Context, startDate, endDate time.Time) ([]Blackout, error) {
	var list []Blackout
	err := r.db.WithContext(ctx).
		Preload("Targets").
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate).
		Find(&list).Error
	return list, err
}
