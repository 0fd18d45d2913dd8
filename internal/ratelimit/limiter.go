package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter is a fixed-window counter kept in Redis. A nil client or a Redis
// failure lets the request through.
type Limiter struct {
	client redis.Cmdable
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// NewLimiter builds a limiter. client may be nil.
func NewLimiter(client redis.Cmdable, prefix string, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{client: client, prefix: prefix, logger: logger, now: time.Now}
}

// Allow counts one hit for key in the current window and reports whether it is within limit.
func (l *Limiter) Allow(ctx context.Context, scope, key string, limit int, window time.Duration) (bool, error) {
	if l == nil || l.client == nil || limit <= 0 {
		return true, nil
	}

	if window < time.Second {
		window = time.Second
	}
	bucket := l.now().Unix() / int64(window.Seconds())
	redisKey := fmt.Sprintf("%s:%s:%s:%d", l.prefix, scope, key, bucket)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warn("rate limiter unavailable, allowing request",
			zap.String("scope", scope),
			zap.Error(err))
		return true, err
	}

	return incr.Val() <= int64(limit), nil
}
