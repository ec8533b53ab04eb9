package domain

// Role is the organizational role of an employee. Routing of leave requests
// depends on it, so the set is closed.
type Role string

const (
	RoleEmployee    Role = "EMPLOYEE"
	RoleAccountant  Role = "ACCOUNTANT"
	RoleDeptHead    Role = "DEPT_HEAD"
	RoleServiceHead Role = "SERVICE_HEAD"
	RoleCEO         Role = "CEO"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleAccountant, RoleDeptHead, RoleServiceHead, RoleCEO:
		return true
	}
	return false
}

// IsManager reports whether the role starts the auto-approval timer when it
// becomes the current assignee of a request.
func (r Role) IsManager() bool {
	return r == RoleDeptHead || r == RoleServiceHead
}

// EmployeeStatus is the account lifecycle state. Only ACTIVE employees are
// eligible for routing.
type EmployeeStatus string

const (
	StatusPendingApproval EmployeeStatus = "PENDING"
	StatusActive          EmployeeStatus = "ACTIVE"
	StatusRejected        EmployeeStatus = "REJECTED"
)

type Gender string

const (
	GenderFemale Gender = "FEMALE"
	GenderMale   Gender = "MALE"
)
