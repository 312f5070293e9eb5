package personnel

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"go-mes/internal/middleware"
	"go-mes/internal/rbac"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	users.Use(middleware.RateLimitByUser(rate.Limit(20), 40))
	{
		users.GET("", middleware.RBACAuthorize(rbacService, "personnel", "read"), h.List)
		users.POST("", middleware.RBACAuthorize(rbacService, "personnel", "create"), h.Create)
		users.GET("/:sap_id", middleware.RBACAuthorize(rbacService, "personnel", "read"), h.Get)
		users.PUT("/:sap_id", middleware.RBACAuthorize(rbacService, "personnel", "update"), h.Update)
		users.DELETE("/:sap_id", middleware.RBACAuthorize(rbacService, "personnel", "delete"), h.SoftDelete)
		users.POST("/:sap_id/specialization", middleware.RBACAuthorize(rbacService, "personnel", "create"), h.AttachSpecialization)
		users.GET("/:sap_id/ancestors/:target", middleware.RBACAuthorize(rbacService, "personnel", "read"), h.Ancestors)
	}
}
