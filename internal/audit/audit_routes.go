package audit

import (
	"aisg-audit/internal/middleware"
	"aisg-audit/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	logger *zap.Logger,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	audits := r.Group("/audits")
	audits.Use(middleware.AuthMiddleware())
	audits.Use(middleware.ContextLogger(logger))
	{
		audits.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "audit", "read"),
			handler.GetAll,
		)
		audits.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "audit", "read"),
			handler.GetByID,
		)
		audits.GET("/:id/report.pdf",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "audit", "read"),
			handler.DownloadReport,
		)

		if redisClient != nil {
			audits.POST("",
				middleware.RateLimitByUser(0.2, 2),
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "audit", "create"),
				handler.Create,
			)
		} else {
			audits.POST("",
				middleware.RateLimitByUser(0.2, 2),
				middleware.RBACAuthorize(rbacService, "audit", "create"),
				handler.Create,
			)
		}

		audits.POST("/:id/refresh-aggregation",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "audit", "update"),
			handler.RefreshAggregation,
		)
		// memanggil LLM, dibatasi lebih ketat
		audits.POST("/:id/regenerate",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RBACAuthorize(rbacService, "audit", "update"),
			handler.Regenerate,
		)

		audits.DELETE("/:id",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RBACAuthorize(rbacService, "audit", "delete"),
			handler.Delete,
		)
		audits.DELETE("/:id/permanent",
			middleware.RateLimitByUser(0.05, 1),
			middleware.RoleMiddleware(RoleSuperAdmin, RoleAdmin),
			handler.HardDelete,
		)
	}
}
