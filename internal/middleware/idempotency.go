package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"aisg-audit/internal/shared/contextutil"
	"aisg-audit/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const idempotencyLockTTL = 30 * time.Second

// Idempotency menahan POST ganda dengan header Idempotency-Key.
// Handler wajib menghapus idempotency_lock_key dan menyimpan hasil ke idempotency_cache_key.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := contextutil.GetLogger(ctx, zap.L()).Named("middleware.idempotency")

		cacheKey := fmt.Sprintf("idemp:%s:%s:%s:%s",
			c.GetString("company_id"), c.FullPath(), c.GetString("user_id"), idempKey)
		lockKey := cacheKey + ":lock"

		if val, err := rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached json.RawMessage = []byte(val)
			log.Info("idempotent replay", zap.String("idempotency_key", idempKey))
			c.Header("Idempotent-Replayed", "true")
			response.Success(c, http.StatusOK, cached, nil)
			c.Abort()
			return
		} else if err != redis.Nil {
			// redis bermasalah: request tetap diproses tanpa perlindungan
			log.Warn("idempotency cache lookup failed", zap.Error(err))
			c.Next()
			return
		}

		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			log.Warn("idempotency lock failed", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			response.Error(c, http.StatusConflict, "PROCESSING", "Permintaan yang sama sedang diproses, mohon tunggu sebentar", nil)
			c.Abort()
			return
		}

		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", lockKey)

		c.Next()
	}
}
