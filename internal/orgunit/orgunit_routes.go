package orgunit

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
	units := r.Group("/org-units")
	units.Use(middleware.AuthMiddleware())
	units.Use(middleware.ContextLogger(logger))
	{
		units.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "org_unit", "read"),
			handler.GetAll,
		)
		units.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "org_unit", "read"),
			handler.GetByID,
		)
		units.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "org_unit", "create"),
			handler.Create,
		)
		units.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "org_unit", "update"),
			handler.Update,
		)
		units.DELETE("/:id",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RBACAuthorize(rbacService, "org_unit", "delete"),
			handler.Delete,
		)
	}
}
