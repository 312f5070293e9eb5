package attendance

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"go-mes/internal/middleware"
	"go-mes/internal/rbac"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	attendances := r.Group("/attendances")
	attendances.Use(middleware.AuthMiddleware())
	attendances.Use(middleware.RateLimitByUser(rate.Limit(20), 40))
	{
		attendances.GET("", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.List)
		attendances.POST("", middleware.RBACAuthorize(rbacService, "attendance", "create"), h.Create)
		attendances.GET("/:id", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.Get)
		attendances.PATCH("/:id", middleware.RBACAuthorize(rbacService, "attendance", "update"), h.Update)
		attendances.DELETE("/:id", middleware.RBACAuthorize(rbacService, "attendance", "delete"), h.SoftDelete)
		attendances.GET("/:id/ancestors/assigned/:target", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.AssignedAncestors)
		attendances.GET("/:id/ancestors/working/:target", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.WorkingAncestors)
	}

	types := r.Group("/attendance-types")
	types.Use(middleware.AuthMiddleware())
	{
		types.GET("", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.ListTypes)
		types.POST("", middleware.RBACAuthorize(rbacService, "attendance", "create"), h.CreateType)
		types.DELETE("/:id", middleware.RBACAuthorize(rbacService, "attendance", "delete"), h.SoftDeleteType)
	}
}
