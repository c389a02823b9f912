package middleware

import (
	"context"
	"fmt"
	"time"

	"cinema-go/internal/api/response"
	"cinema-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const throttleKeyPrefix = "throttle:ip:"

// Throttle 基于 Redis 的按 IP 固定窗口限流。Redis 不可用时放行
type Throttle struct {
	client   redis.Cmdable
	requests int64
	window   time.Duration
}

func NewThrottle(client redis.Cmdable, requests int, window time.Duration) *Throttle {
	return &Throttle{client: client, requests: int64(requests), window: window}
}

// allow 返回是否放行以及被拒绝时的剩余等待时间
func (t *Throttle) allow(ctx context.Context, clientIP string) (bool, time.Duration, error) {
	key := throttleKeyPrefix + clientIP

	n, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return true, 0, fmt.Errorf("incr throttle counter: %w", err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return true, 0, fmt.Errorf("expire throttle counter: %w", err)
		}
	}
	if n <= t.requests {
		return true, 0, nil
	}

	ttl, err := t.client.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		// 计数器丢失过期时间时补上，避免永久封禁
		_ = t.client.Expire(ctx, key, t.window).Err()
		ttl = t.window
	}
	return false, ttl, nil
}

// Handler 返回 gin 中间件
func (t *Throttle) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if t == nil || t.client == nil || t.requests <= 0 {
			c.Next()
			return
		}

		ok, wait, err := t.allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("Throttle check failed, allowing request",
				zap.String("ip", c.ClientIP()),
				zap.Error(err),
			)
		}
		if !ok {
			secs := int64((wait + time.Second - 1) / time.Second)
			response.TooManyRequests(c, "请求过于频繁，请稍后再试", secs)
			c.Abort()
			return
		}
		c.Next()
	}
}
