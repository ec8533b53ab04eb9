package blackout

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
	blackouts := r.Group("/blackouts")
	blackouts.Use(middleware.AuthMiddleware())
	{
		blackouts.GET("", middleware.RBACAuthorize(rbacService, "blackout", "read"), handler.GetAll)
		blackouts.POST("", middleware.RBACAuthorize(rbacService, "blackout", "manage"), handler.Create)
		blackouts.DELETE("/:id", middleware.RBACAuthorize(rbacService, "blackout", "manage"), handler.Delete)
	}
}
