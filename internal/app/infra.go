package app

import (
	"context"
	"database/sql"

	"aisg-audit/internal/audit"
	"aisg-audit/internal/auth"
	"aisg-audit/internal/employee"
	"aisg-audit/internal/orgunit"
	"aisg-audit/internal/performance"
	"aisg-audit/internal/position"
	"aisg-audit/internal/rbac"
	"aisg-audit/internal/shared/connection"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func connectDB(cfg Config) (*gorm.DB, *sql.DB, error) {
	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode, 5,
	)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}
	return gormDB, sqlDB, nil
}

// schemaStatements bagian skema yang tidak bisa diekspresikan lewat tag gorm.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id UUID PRIMARY KEY,
		request_id TEXT,
		aggregate_type VARCHAR(50) NOT NULL,
		aggregate_id UUID NOT NULL,
		event_type VARCHAR(100) NOT NULL,
		topic VARCHAR(255) NOT NULL,
		payload JSONB NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		retry_count INT NOT NULL DEFAULT 0,
		next_retry_at TIMESTAMPTZ,
		error_message TEXT,
		processed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox_events(status, next_retry_at, created_at)`,
	`CREATE TABLE IF NOT EXISTS company_counters (
		company_id UUID NOT NULL,
		counter_type VARCHAR(50) NOT NULL,
		last_value BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (company_id, counter_type)
	)`,
	// audit yang sudah soft delete tidak menghalangi audit baru di periode yang sama
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_audit_employee_period
		ON audits(employee_id, year, quarter) WHERE deleted_at IS NULL`,
}

func migrate(db *gorm.DB, logger *zap.Logger) error {
	if err := db.AutoMigrate(
		&position.Position{},
		&orgunit.OrgUnit{},
		&employee.Employee{},
		&performance.MonthlyPerformance{},
		&audit.Audit{},
		&audit.AuditPillar{},
		&auth.User{},
		&rbac.RolePermission{},
	); err != nil {
		return err
	}

	for _, stmt := range schemaStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	logger.Info("schema migrated")
	return nil
}

func seed(ctx context.Context, svc position.Service) error {
	return svc.Seed(ctx)
}
