package performance

import (
	"aisg-audit/internal/middleware"
	"aisg-audit/internal/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	logger *zap.Logger,
) {
	perf := r.Group("/performances")
	perf.Use(middleware.AuthMiddleware())
	perf.Use(middleware.ContextLogger(logger))
	{
		perf.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "performance", "read"),
			handler.GetAll,
		)
		perf.GET("/quarterly",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "performance", "read"),
			handler.GetQuarterly,
		)
		perf.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "performance", "read"),
			handler.GetByID,
		)
		// POST dan PUT sama-sama upsert per (employee, year, month)
		perf.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "performance", "create"),
			handler.Upsert,
		)
		perf.PUT("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "performance", "update"),
			handler.Upsert,
		)
		perf.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "performance", "delete"),
			handler.Delete,
		)
	}
}
