package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-mes/internal/rbac"
	"go-mes/internal/shared/contextutil"
	"go-mes/internal/shared/response"
)

func RBACAuthorize(rbacService rbac.Service, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := strings.ToUpper(strings.TrimSpace(c.GetString("role")))
		if role == "" {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Role not found in token", nil)
			c.Abort()
			return
		}

		allowed, err := rbacService.Enforce(rbac.EnforceRequest{
			Role:     role,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Authorization check failed", nil)
			c.Abort()
			return
		}
		if !allowed {
			contextutil.GetLogger(c.Request.Context(), zap.L()).Warn("authorization denied",
				zap.String("role", role),
				zap.String("resource", resource),
				zap.String("action", action),
			)
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
