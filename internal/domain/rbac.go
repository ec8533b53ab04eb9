package domain

// EnforceRequest asks whether an actor with the given role may perform an
// action on a resource. Roles come from the authenticated session claims;
// the permission matrix is fixed policy, not per-tenant configuration.
type EnforceRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Role       Role   `json:"role" binding:"required"`
	Resource   string `json:"resource" binding:"required"`
	Action     string `json:"action" binding:"required"`
}
