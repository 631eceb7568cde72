package app

import (
	"database/sql"

	"aisg-audit/internal/audit"
	"aisg-audit/internal/auth"
	"aisg-audit/internal/bulkimport"
	"aisg-audit/internal/employee"
	"aisg-audit/internal/messaging/kafka"
	"aisg-audit/internal/narrative"
	"aisg-audit/internal/orgunit"
	"aisg-audit/internal/performance"
	"aisg-audit/internal/position"
	"aisg-audit/internal/rbac"
	"aisg-audit/internal/rbac/infra"
	"aisg-audit/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type modules struct {
	rbac        rbac.Service
	auth        auth.Service
	positions   position.Service
	orgUnits    orgunit.Service
	employees   employee.Service
	performance performance.Service
	audits      audit.Service
	imports     bulkimport.Service
}

func newNarrativeWriter(cfg Config, logger *zap.Logger) narrative.Writer {
	var completer narrative.Completer
	if cfg.OpenAIKey != "" {
		completer = narrative.NewOpenAICompleter(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	} else {
		logger.Warn("OPENAI_API_KEY not set, narratives use the deterministic template")
	}
	return narrative.NewTieredWriter(
		completer,
		cfg.NarrativePrimary,
		cfg.NarrativeFallback,
		narrative.WithTimeout(cfg.NarrativeTimeout),
		narrative.WithLogger(logger),
	)
}

// buildServices dipakai bersama oleh API dan consumer.
func buildServices(
	cfg Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) (*modules, error) {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	positionRepo := position.NewRepository(gormDB)
	orgUnitRepo := orgunit.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	performanceRepo := performance.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(cfg.RBACModelPath)
	if err != nil {
		return nil, err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)

	// --- Services ---
	return &modules{
		rbac:        rbacService,
		auth:        auth.NewService(authRepo, rbacService, employeeRepo, logger),
		positions:   position.NewService(positionRepo, rdb, logger),
		orgUnits:    orgunit.NewService(db, orgUnitRepo, logger),
		employees:   employee.NewServiceWithOutbox(db, employeeRepo, counterRepo, outboxRepo, rdb, logger),
		performance: performance.NewService(db, performanceRepo, logger),
		audits: audit.NewService(
			db, auditRepo, employeeRepo, performanceRepo,
			newNarrativeWriter(cfg, logger), outboxRepo, logger,
		),
		imports: bulkimport.NewService(db, employeeRepo, performanceRepo, outboxRepo, rdb, logger),
	}, nil
}

func registerModules(
	router *gin.Engine,
	cfg Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) (*modules, error) {
	m, err := buildServices(cfg, db, gormDB, rdb, logger)
	if err != nil {
		return nil, err
	}

	// --- Handlers ---
	authHandler := auth.NewHandler(m.auth, logger)
	rbacHandler := rbac.NewHandler(m.rbac, logger)
	positionHandler := position.NewHandler(m.positions, logger)
	orgUnitHandler := orgunit.NewHandler(m.orgUnits, logger)
	employeeHandler := employee.NewHandler(m.employees, logger)
	performanceHandler := performance.NewHandler(m.performance, logger)
	auditHandler := audit.NewHandlerWithRedis(m.audits, rdb, logger)
	importHandler := bulkimport.NewHandler(m.imports, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, logger)
		rbac.RegisterRoutes(api, rbacHandler, logger)
		position.RegisterRoutes(api, positionHandler, m.rbac)
		orgunit.RegisterRoutes(api, orgUnitHandler, m.rbac, logger)
		employee.RegisterRoutes(api, employeeHandler, m.rbac, logger)
		performance.RegisterRoutes(api, performanceHandler, m.rbac, logger)
		audit.RegisterRoutes(api, auditHandler, m.rbac, logger, rdb)
		bulkimport.RegisterRoutes(api, importHandler, m.rbac, logger)
	}

	return m, nil
}
