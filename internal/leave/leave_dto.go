package leave

type CreateLeaveRequest struct {
	Type      string `json:"type" binding:"required,oneof=ANNUAL_PAID EXCEPTIONAL_PAID SICK MATERNITY MENSTRUAL UNPAID"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason"`
}

type DecideLeaveRequest struct {
	Comment string `json:"comment"`
}

type EscalateLeaveRequest struct {
	ToRole  *string `json:"to_role" binding:"omitempty,oneof=DEPT_HEAD SERVICE_HEAD CEO"`
	Comment string  `json:"comment"`
}

// HistoryFilter narrows the paginated history listing.
type HistoryFilter struct {
	EmployeeID string
	ActorID    string
	Statuses   []string
	Year       int
	Page       int
	PageSize   int
}

type LeaveResponse struct {
	ID                 string  `json:"id"`
	Reference          string  `json:"reference"`
	EmployeeID         string  `json:"employee_id"`
	Type               string  `json:"type"`
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date"`
	TotalDays          int     `json:"total_days"`
	Reason             string  `json:"reason,omitempty"`
	Status             string  `json:"status"`
	CurrentAssigneeID  *string `json:"current_assignee_id,omitempty"`
	DeptHeadAssignedAt *string `json:"dept_head_assigned_at,omitempty"`
	ReachedCeoAt       *string `json:"reached_ceo_at,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

type DecisionResponse struct {
	ID             string  `json:"id"`
	LeaveRequestID string  `json:"leave_request_id"`
	ActorID        string  `json:"actor_id"`
	Type           string  `json:"type"`
	Comment        string  `json:"comment,omitempty"`
	ToEmployeeID   *string `json:"to_employee_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
}
