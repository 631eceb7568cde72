package auth

import (
	"aisg-audit/internal/middleware"
	"aisg-audit/internal/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, logger *zap.Logger) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimitByIP(0.2, 5), handler.Login)
		auth.POST("/refresh", middleware.RateLimitByIP(0.5, 10), handler.RefreshToken)
		auth.POST("/logout", handler.Logout)

		secured := auth.Group("")
		secured.Use(middleware.AuthMiddleware())
		secured.Use(middleware.ContextLogger(logger))
		secured.GET("/me", middleware.RateLimitByUser(2, 5), handler.Me)
		secured.POST("/register",
			middleware.RoleMiddleware(rbac.RoleSuperAdmin, rbac.RoleAdmin),
			middleware.RateLimitByUser(0.5, 5),
			handler.Register,
		)
	}
}
