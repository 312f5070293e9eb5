package shift

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"go-mes/internal/middleware"
	"go-mes/internal/rbac"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	shifts := r.Group("/shifts")
	shifts.Use(middleware.AuthMiddleware())
	shifts.Use(middleware.RateLimitByUser(rate.Limit(20), 40))
	{
		shifts.GET("", middleware.RBACAuthorize(rbacService, "shift", "read"), h.List)
		shifts.POST("", middleware.RBACAuthorize(rbacService, "shift", "create"), h.Create)
		shifts.GET("/:id", middleware.RBACAuthorize(rbacService, "shift", "read"), h.Get)
		shifts.PATCH("/:id", middleware.RBACAuthorize(rbacService, "shift", "update"), h.Update)
		shifts.DELETE("/:id", middleware.RBACAuthorize(rbacService, "shift", "delete"), h.SoftDelete)
		shifts.GET("/:id/ancestors/:target", middleware.RBACAuthorize(rbacService, "shift", "read"), h.Ancestors)
	}
}
