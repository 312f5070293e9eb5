package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"go-mes/internal/middleware"
	"go-mes/internal/rbac"
	"go-mes/internal/shared/contextutil"
)

type fakeRBACService struct {
	allowed bool
	err     error
}

func (f *fakeRBACService) Enforce(_ rbac.EnforceRequest) (bool, error) {
	return f.allowed, f.err
}

func newAuthorizedRouter(svc rbac.Service, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("role", "PLANNER")
		ctx := contextutil.WithLogger(c.Request.Context(), logger)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	router.GET("/ping",
		middleware.RBACAuthorize(svc, "production", "create"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return router
}

func TestRBACAuthorize(t *testing.T) {
	t.Run("lets an allowed role through", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		router := newAuthorizedRouter(&fakeRBACService{allowed: true}, zap.New(core))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, logs.Len())
	})

	t.Run("logs a denial with the request-scoped logger", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		router := newAuthorizedRouter(&fakeRBACService{allowed: false}, zap.New(core))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		require.Equal(t, 1, logs.Len())

		entry := logs.All()[0]
		assert.Equal(t, "authorization denied", entry.Message)
		fields := entry.ContextMap()
		assert.Equal(t, "PLANNER", fields["role"])
		assert.Equal(t, "production", fields["resource"])
		assert.Equal(t, "create", fields["action"])
	})

	t.Run("rejects a request without a role", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.GET("/ping",
			middleware.RBACAuthorize(&fakeRBACService{allowed: true}, "production", "create"),
			func(c *gin.Context) { c.Status(http.StatusOK) },
		)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
