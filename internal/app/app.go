package app

import (
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/blackout"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/employee"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/leave"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/middleware"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/shared/connection"
)

type Config struct {
	AutoApproveAfter    time.Duration
	UntargetedBlocksAll bool
}

// ConfigFromEnv reads tunables with their policy defaults: five days before
// an idle manager request auto-approves, and untargeted blackouts apply to
// everyone.
func ConfigFromEnv() Config {
	cfg := Config{
		AutoApproveAfter:    5 * 24 * time.Hour,
		UntargetedBlocksAll: true,
	}

	if v := os.Getenv("LEAVE_AUTO_APPROVE_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.AutoApproveAfter = time.Duration(days) * 24 * time.Hour
		}
	}

	if v := os.Getenv("BLACKOUT_UNTARGETED_BLOCKS_ALL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.UntargetedBlocksAll = b
		}
	}

	return cfg
}

func BuildApp(router *gin.Engine) error {
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimitByIP(20, 40))
	router.Use(middleware.ContextLogger(zap.L()))

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	zap.L().Info("database connection established")

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	zap.L().Info("redis connection established")

	if err := migrate(gormDB); err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	return registerModules(router, sqlDB, gormDB, redisClient, ConfigFromEnv())
}

func migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&employee.Employee{},
		&leave.LeaveRequest{},
		&leave.LeaveDecision{},
		&blackout.Blackout{},
		&blackout.BlackoutTarget{},
	); err != nil {
		return err
	}

	// The outbox and counters tables are written with raw SQL, so they are
	// created the same way.
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS outbox_events (
			id UUID PRIMARY KEY,
			request_id TEXT,
			aggregate_type TEXT NOT NULL,
			aggregate_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			topic TEXT NOT NULL,
			payload JSONB NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			retry_count INT NOT NULL DEFAULT 0,
			error_message TEXT,
			next_retry_at TIMESTAMPTZ,
			processed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_events_status_created_at
			ON outbox_events (status, created_at)`,
		`CREATE TABLE IF NOT EXISTS counters (
			counter_type TEXT PRIMARY KEY,
			last_value BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range ddl {
		if err := gormDB.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
