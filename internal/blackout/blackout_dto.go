package blackout

type CreateBlackoutRequest struct {
	StartDate    string   `json:"start_date" binding:"required"`
	EndDate      string   `json:"end_date" binding:"required"`
	DepartmentID *string  `json:"department_id" binding:"omitempty,uuid"`
	EmployeeIDs  []string `json:"employee_ids" binding:"omitempty,dive,uuid"`
}

type BlackoutResponse struct {
	ID           string   `json:"id"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	DepartmentID *string  `json:"department_id,omitempty"`
	EmployeeIDs  []string `json:"employee_ids,omitempty"`
	CreatedByID  string   `json:"created_by_id"`
}
