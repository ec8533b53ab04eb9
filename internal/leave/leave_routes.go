package leave

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/middleware"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/rbac"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	redisClient *redis.Client,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.GET("", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.History)
		leaves.GET("/inbox", middleware.RBACAuthorize(rbacService, "leave", "decide"), handler.Inbox)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetByID)
		leaves.GET("/:id/decisions", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.Decisions)
		leaves.POST("",
			middleware.RBACAuthorize(rbacService, "leave", "create"),
			middleware.RateLimitByActor(1, 5),
			middleware.Idempotency(redisClient),
			handler.Submit,
		)
		leaves.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "leave", "decide"), handler.Approve)
		leaves.POST("/:id/reject", middleware.RBACAuthorize(rbacService, "leave", "decide"), handler.Reject)
		leaves.POST("/:id/escalate", middleware.RBACAuthorize(rbacService, "leave", "decide"), handler.Escalate)
		leaves.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "leave", "create"), handler.Cancel)
	}
}
