package app

import (
	"context"

	"aisg-audit/internal/middleware"
	"aisg-audit/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp menyiapkan koneksi, skema, dan seluruh route API.
// Fungsi cleanup yang dikembalikan menutup koneksi saat shutdown.
func BuildApp(router *gin.Engine, cfg Config, logger *zap.Logger) (func(), error) {
	log := logger.Named("app")

	gormDB, sqlDB, err := connectDB(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("database connection established")

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.Info("redis connection established")

	if err := migrate(gormDB, log); err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, err
	}

	router.Use(middleware.RequestID())

	mods, err := registerModules(router, cfg, sqlDB, gormDB, redisClient, logger)
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, err
	}

	if err := seed(context.Background(), mods.positions); err != nil {
		log.Warn("seed positions failed", zap.Error(err))
	}

	cleanup := func() {
		_ = redisClient.Close()
		_ = sqlDB.Close()
	}
	return cleanup, nil
}
