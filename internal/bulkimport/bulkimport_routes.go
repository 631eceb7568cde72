package bulkimport

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
	imports := r.Group("/imports")
	imports.Use(middleware.AuthMiddleware())
	imports.Use(middleware.ContextLogger(logger))
	{
		imports.POST("/employees",
			middleware.RateLimitByUser(0.05, 1),
			middleware.RBACAuthorize(rbacService, "employee", "import"),
			handler.ImportEmployees,
		)
	}
}
