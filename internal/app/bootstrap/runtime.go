package bootstrap

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/kpphospital/mch-appointments/internal/config"
	httpmiddleware "github.com/kpphospital/mch-appointments/internal/http/middleware"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildRateLimiter picks the shared Redis limiter when Redis answers and the
// per-process token bucket otherwise. The returned func releases resources.
func BuildRateLimiter(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (httpmiddleware.Limiter, func()) {
	if logger == nil {
		logger = logging.Default()
	}
	perMinute := cfg.RateLimitPerMinute
	if perMinute <= 0 {
		logger.Info("rate limiting disabled")
		return nil, func() {}
	}

	if client := BuildRedisClient(ctx, cfg, logger, true); client != nil {
		logger.Info("using redis rate limiter", "addr", cfg.RedisAddr, "per_minute", perMinute)
		return httpmiddleware.NewRedisLimiter(client, perMinute), func() { _ = client.Close() }
	}

	limiter := httpmiddleware.NewRateLimiter(float64(perMinute)/60, cfg.RateLimitBurst)
	logger.Info("using in-memory rate limiter", "per_minute", perMinute, "burst", cfg.RateLimitBurst)
	return limiter, limiter.Close
}
