package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/domain"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/rbac"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/shared/response"
)

// RBACAuthorize checks the actor's role against the permission matrix for
// the given resource and action. Must run after AuthMiddleware.
func RBACAuthorize(service rbac.Service, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID := c.GetString("employee_id")
		roleStr := c.GetString("role")
		if employeeID == "" || roleStr == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authentication context", nil)
			c.Abort()
			return
		}

		role := domain.Role(roleStr)
		if !role.Valid() {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Unknown role", nil)
			c.Abort()
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			EmployeeID: employeeID,
			Role:       role,
			Resource:   resource,
			Action:     action,
		})
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Authorization check failed", nil)
			c.Abort()
			return
		}
		if !allowed {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
