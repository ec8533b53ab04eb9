package leave

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository

	// Transactional writes. These run on the bound *sql.Tx so the request
	// update and the decision insert commit or roll back together.
	Create(ctx context.Context, r *LeaveRequest) error
	FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error)
	UpdateState(ctx context.Context, r *LeaveRequest) error
	CreateDecision(ctx context.Context, d *LeaveDecision) error

	// Reads.
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindPendingByAssignee(ctx context.Context, assigneeID string) ([]LeaveRequest, error)
	FindOverdueManagerAssignments(ctx context.Context, cutoff time.Time) ([]LeaveRequest, error)
	FindByFilter(ctx context.Context, filter HistoryFilter) ([]LeaveRequest, int64, error)
	ListDecisionsByRequest(ctx context.Context, requestID string) ([]LeaveDecision, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *repository) execer() execer {
	if r.tx != nil {
		return r.tx
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		panic("leave repository: underlying sql.DB unavailable: " + err.Error())
	}
	return sqlDB
}

func (r *repository) Create(ctx context.Context, req *LeaveRequest) error {
	query := `
        INSERT INTO leave_requests (
            id, reference, employee_id, type, start_date, end_date, reason,
            status, current_assignee_id, dept_head_assigned_at, reached_ceo_at,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		req.ID, req.Reference, req.EmployeeID, req.Type,
		req.StartDate, req.EndDate, req.Reason,
		req.Status, req.CurrentAssigneeID, req.DeptHeadAssignedAt, req.ReachedCeoAt,
	)
	return err
}

// FindByIDForUpdate locks the request row for the duration of the decision
// transaction, so concurrent decisions on one request serialize.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	query := `
SELECT
	id, reference, employee_id, type, start_date, end_date, reason,
	status, current_assignee_id, dept_head_assigned_at, reached_ceo_at, created_at
FROM leave_requests
WHERE id = $1
FOR UPDATE
`
	var req LeaveRequest
	err := r.execer().QueryRowContext(ctx, query, id).Scan(
		&req.ID,
		&req.Reference,
		&req.EmployeeID,
		&req.Type,
		&req.StartDate,
		&req.EndDate,
		&req.Reason,
		&req.Status,
		&req.CurrentAssigneeID,
		&req.DeptHeadAssignedAt,
		&req.ReachedCeoAt,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) UpdateState(ctx context.Context, req *LeaveRequest) error {
	query := `
UPDATE leave_requests
SET
	status = $2,
	current_assignee_id = $3,
	dept_head_assigned_at = $4,
	reached_ceo_at = $5,
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(
		ctx, query,
		req.ID, req.Status, req.CurrentAssigneeID, req.DeptHeadAssignedAt, req.ReachedCeoAt,
	)
	return err
}

func (r *repository) CreateDecision(ctx context.Context, d *LeaveDecision) error {
	query := `
        INSERT INTO leave_decisions (
            id, leave_request_id, actor_id, type, comment, to_employee_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, NOW())
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		d.ID, d.LeaveRequestID, d.ActorID, d.Type, d.Comment, d.ToEmployeeID,
	)
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	return &req, err
}

func (r *repository) FindPendingByAssignee(ctx context.Context, assigneeID string) ([]LeaveRequest, error) {
	var list []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("current_assignee_id = ?", assigneeID).
		Where("status IN ?", []string{StatusSubmitted, StatusPending}).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

// FindOverdueManagerAssignments returns in-flight requests sitting with a
// department or service head past the auto-approval cutoff.
func (r *repository) FindOverdueManagerAssignments(ctx context.Context, cutoff time.Time) ([]LeaveRequest, error) {
	var list []LeaveRequest
	err := r.db.WithContext(ctx).
		Table("leave_requests").
		Joins("JOIN employees ON employees.id = leave_requests.current_assignee_id").
		Where("leave_requests.status IN ?", []string{StatusSubmitted, StatusPending}).
		Where("employees.role IN ?", []string{"DEPT_HEAD", "SERVICE_HEAD"}).
		Where("leave_requests.dept_head_assigned_at IS NOT NULL").
		Where("leave_requests.dept_head_assigned_at < ?", cutoff).
		Find(&list).Error
	return list, err
}

func (r *repository) FindByFilter(ctx context.Context, filter HistoryFilter) ([]LeaveRequest, int64, error) {
	db := r.db.WithContext(ctx).Model(&LeaveRequest{})

	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.ActorID != "" {
		db = db.Where("id IN (SELECT leave_request_id FROM leave_decisions WHERE actor_id = ?)", filter.ActorID)
	}
	if len(filter.Statuses) > 0 {
		db = db.Where("status IN ?", filter.Statuses)
	}
	if filter.Year > 0 {
		yearStart := time.Date(filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		yearEnd := time.Date(filter.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
		db = db.Where("NOT (end_date < ? OR start_date > ?)", yearStart, yearEnd)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	var list []LeaveRequest
	err := db.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&list).Error
	return list, total, err
}

func (r *repository) ListDecisionsByRequest(ctx context.Context, requestID string) ([]LeaveDecision, error) {
	var list []LeaveDecision
	err := r.db.WithContext(ctx).
		Where("leave_request_id = ?", requestID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}
