package leave

import (
	"time"

	"github.com/google/uuid"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/domain"
)

const (
	StatusSubmitted = "SUBMITTED"
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCanceled  = "CANCELLED"
)

// IsTerminal reports whether a status is final. Terminal requests are
// immutable and carry no assignee.
func IsTerminal(status string) bool {
	switch status {
	case StatusApproved, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

const (
	DecisionSubmit   = "SUBMIT"
	DecisionApprove  = "APPROVE"
	DecisionReject   = "REJECT"
	DecisionEscalate = "ESCALATE"
	DecisionCancel   = "CANCEL"
)

// LeaveRequest is a single time-off application. It is mutated only by the
// state machine in this package and becomes immutable once terminal.
type LeaveRequest struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Reference  string           `gorm:"type:varchar(20);uniqueIndex"`
	EmployeeID uuid.UUID        `gorm:"type:uuid;not null;index:idx_leave_requests_employee"`
	Type       domain.LeaveType `gorm:"type:varchar(30);not null"`

	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	Reason    string    `gorm:"type:text"`

	Status            string     `gorm:"type:varchar(20);not null;index:idx_leave_requests_status"`
	CurrentAssigneeID *uuid.UUID `gorm:"type:uuid;index:idx_leave_requests_assignee"`

	// DeptHeadAssignedAt starts the auto-approval timer when a department or
	// service head becomes the assignee. ReachedCeoAt marks first arrival at
	// the CEO and is never cleared.
	DeptHeadAssignedAt *time.Time
	ReachedCeoAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeaveDecision is one row of the append-only audit ledger. Decisions are
// never updated or deleted.
type LeaveDecision struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LeaveRequestID uuid.UUID  `gorm:"type:uuid;not null;index:idx_leave_decisions_request"`
	ActorID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_leave_decisions_actor"`
	Type           string     `gorm:"type:varchar(20);not null"`
	Comment        string     `gorm:"type:text"`
	ToEmployeeID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
}
