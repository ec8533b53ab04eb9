package employee

import (
	"github.com/gin-gonic/gin"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/middleware"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/rbac"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("/me", handler.Profile)
		employees.GET("", middleware.RBACAuthorize(rbacService, "employee", "read"), handler.GetAll)
		employees.GET("/:id", middleware.RBACAuthorize(rbacService, "employee", "read"), handler.GetByID)
		employees.POST("", middleware.RBACAuthorize(rbacService, "employee", "manage"), handler.Create)
		employees.PATCH("/:id/status", middleware.RBACAuthorize(rbacService, "employee", "manage"), handler.UpdateStatus)
	}
}
