package app

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"go-mes/internal/ancestry"
	"go-mes/internal/attendance"
	"go-mes/internal/audit"
	"go-mes/internal/hierarchy"
	"go-mes/internal/messaging/kafka"
	"go-mes/internal/middleware"
	"go-mes/internal/personnel"
	"go-mes/internal/production"
	"go-mes/internal/rbac"
	"go-mes/internal/rbac/infra"
	"go-mes/internal/shift"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	hierarchyRepo := hierarchy.NewRepository(gormDB)
	personnelRepo := personnel.NewRepository(gormDB)
	shiftRepo := shift.NewRepository(gormDB)
	productionRepo := production.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Ancestry Resolver ---
	resolver := ancestry.New()
	hierarchy.RegisterChains(resolver, hierarchyRepo)
	personnel.RegisterChains(resolver, personnelRepo)
	shift.RegisterChains(resolver, shiftRepo)
	production.RegisterChains(resolver, productionRepo)
	attendance.RegisterChains(resolver)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(enforcer)
	if err != nil {
		return err
	}

	clock := audit.SystemClock()

	// --- Services ---
	hierarchyService := hierarchy.NewServiceWithOutbox(db, hierarchyRepo, resolver, clock, outboxRepo, rdb)
	personnelService := personnel.NewServiceWithOutbox(db, personnelRepo, hierarchyRepo, resolver, clock, outboxRepo)
	shiftService := shift.NewService(db, shiftRepo, hierarchyRepo, personnelRepo, resolver, clock)
	productionService := production.NewService(db, productionRepo, hierarchyRepo, shiftRepo, personnelRepo, resolver, clock, rdb)
	attendanceService := attendance.NewService(db, attendanceRepo, hierarchyRepo, shiftRepo, personnelRepo, resolver, clock, rdb)

	// --- Handlers ---
	hierarchyHandler := hierarchy.NewHandler(hierarchyService)
	personnelHandler := personnel.NewHandler(personnelService)
	shiftHandler := shift.NewHandler(shiftService)
	productionHandler := production.NewHandler(productionService)
	attendanceHandler := attendance.NewHandler(attendanceService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitByIP(rate.Limit(50), 100))
	{
		hierarchy.RegisterRoutes(api, hierarchyHandler, rbacService)
		personnel.RegisterRoutes(api, personnelHandler, rbacService)
		shift.RegisterRoutes(api, shiftHandler, rbacService)
		production.RegisterRoutes(api, productionHandler, rbacService)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService)
	}

	return nil
}
