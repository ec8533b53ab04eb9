package app

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/balance"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/blackout"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/employee"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/leave"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/messaging/kafka"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/rbac"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/routing"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/shared/counter"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	cfg Config,
) error {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	blackoutRepo := blackout.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	counterRepo := counter.NewRepository(gormDB)

	// --- RBAC Core ---
	rbacService, err := rbac.NewService()
	if err != nil {
		return err
	}

	// --- Services ---
	balanceService := balance.NewService(balanceRepo)
	employeeService := employee.NewService(employeeRepo, balanceService)
	blackoutService := blackout.NewService(blackoutRepo, cfg.UntargetedBlocksAll)
	resolver := routing.NewResolver(employeeRepo)
	leaveService := leave.NewService(db, leave.Deps{
		Repo:             leaveRepo,
		Outbox:           outboxRepo,
		Employees:        employeeRepo,
		Balances:         balanceService,
		Blackouts:        blackoutService,
		Resolver:         resolver,
		Counter:          counterRepo,
		AutoApproveAfter: cfg.AutoApproveAfter,
	})

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService)
	blackoutHandler := blackout.NewHandler(blackoutService)
	leaveHandler := leave.NewHandlerWithRedis(leaveService, rdb)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		blackout.RegisterRoutes(api, blackoutHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb)
	}

	return nil
}
