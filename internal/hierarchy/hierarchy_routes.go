package hierarchy

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"go-mes/internal/middleware"
	"go-mes/internal/rbac"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	nodes := r.Group("/hierarchy")
	nodes.Use(middleware.AuthMiddleware())
	nodes.Use(middleware.RateLimitByUser(rate.Limit(20), 40))
	{
		nodes.GET("/:level", middleware.RBACAuthorize(rbacService, "hierarchy", "read"), h.List)
		nodes.POST("/:level", middleware.RBACAuthorize(rbacService, "hierarchy", "create"), h.Create)
		nodes.GET("/:level/:id", middleware.RBACAuthorize(rbacService, "hierarchy", "read"), h.Get)
		nodes.PATCH("/:level/:id/name", middleware.RBACAuthorize(rbacService, "hierarchy", "update"), h.Rename)
		nodes.PATCH("/:level/:id/parent", middleware.RBACAuthorize(rbacService, "hierarchy", "update"), h.Reparent)
		nodes.DELETE("/:level/:id", middleware.RBACAuthorize(rbacService, "hierarchy", "delete"), h.SoftDelete)
		nodes.GET("/:level/:id/ancestors/:target", middleware.RBACAuthorize(rbacService, "hierarchy", "read"), h.Ancestors)
	}
}
