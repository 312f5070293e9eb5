package production

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"go-mes/internal/middleware"
	"go-mes/internal/rbac"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	productions := r.Group("/productions")
	productions.Use(middleware.AuthMiddleware())
	productions.Use(middleware.RateLimitByUser(rate.Limit(20), 40))
	{
		productions.GET("", middleware.RBACAuthorize(rbacService, "production", "read"), h.List)
		productions.POST("", middleware.RBACAuthorize(rbacService, "production", "create"), h.Create)
		productions.GET("/:id", middleware.RBACAuthorize(rbacService, "production", "read"), h.Get)
		productions.PATCH("/:id", middleware.RBACAuthorize(rbacService, "production", "update"), h.Update)
		productions.DELETE("/:id", middleware.RBACAuthorize(rbacService, "production", "delete"), h.SoftDelete)
		productions.GET("/:id/ancestors/:target", middleware.RBACAuthorize(rbacService, "production", "read"), h.Ancestors)
	}

	losses := r.Group("/losses")
	losses.Use(middleware.AuthMiddleware())
	{
		losses.GET("", middleware.RBACAuthorize(rbacService, "production", "read"), h.ListLosses)
		losses.POST("", middleware.RBACAuthorize(rbacService, "production", "create"), h.CreateLoss)
		losses.GET("/:id", middleware.RBACAuthorize(rbacService, "production", "read"), h.GetLoss)
		losses.DELETE("/:id", middleware.RBACAuthorize(rbacService, "production", "delete"), h.SoftDeleteLoss)
		losses.GET("/:id/ancestors/:target", middleware.RBACAuthorize(rbacService, "production", "read"), h.LossAncestors)
	}

	reasons := r.Group("/loss-reasons")
	reasons.Use(middleware.AuthMiddleware())
	{
		reasons.GET("", middleware.RBACAuthorize(rbacService, "production", "read"), h.ListLossReasons)
		reasons.POST("", middleware.RBACAuthorize(rbacService, "production", "create"), h.CreateLossReason)
		reasons.DELETE("/:id", middleware.RBACAuthorize(rbacService, "production", "delete"), h.SoftDeleteLossReason)
	}
}
