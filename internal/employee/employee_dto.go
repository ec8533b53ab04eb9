package employee

type CreateEmployeeRequest struct {
	FullName         string  `json:"full_name" binding:"required"`
	Email            string  `json:"email" binding:"required,email"`
	Role             string  `json:"role" binding:"required,oneof=EMPLOYEE ACCOUNTANT DEPT_HEAD SERVICE_HEAD CEO"`
	Gender           string  `json:"gender" binding:"omitempty,oneof=FEMALE MALE"`
	DepartmentID     *string `json:"department_id" binding:"omitempty,uuid"`
	ServiceID        *string `json:"service_id" binding:"omitempty,uuid"`
	HireDate         *string `json:"hire_date"`
	CompanyEntryDate *string `json:"company_entry_date"`
}

type UpdateEmployeeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE REJECTED"`
}

type EmployeeResponse struct {
	ID               string  `json:"id"`
	FullName         string  `json:"full_name"`
	Email            string  `json:"email"`
	Role             string  `json:"role"`
	Status           string  `json:"status"`
	Gender           string  `json:"gender,omitempty"`
	DepartmentID     *string `json:"department_id,omitempty"`
	ServiceID        *string `json:"service_id,omitempty"`
	HireDate         *string `json:"hire_date,omitempty"`
	CompanyEntryDate *string `json:"company_entry_date,omitempty"`
	LeaveBalance     string  `json:"leave_balance"`
}

// ProfileResponse is the employee plus the reconciled balance breakdown the
// dashboard displays.
type ProfileResponse struct {
	Employee          EmployeeResponse `json:"employee"`
	EntitlementDays   string           `json:"entitlement_days"`
	ConsumedDays      int              `json:"consumed_days"`
	AvailableDays     string           `json:"available_days"`
	AvailableWithNext string           `json:"available_with_next_year"`
	SeniorityYears    int              `json:"seniority_years"`
}
