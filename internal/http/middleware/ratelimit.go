package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kpphospital/mch-appointments/pkg/logging"
)

// Limiter decides whether a client key may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimiter provides per-IP rate limiting using a token bucket algorithm.
// It keeps state in memory, so each replica limits independently.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   int     // max tokens
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type bucket struct {
	tokens   float64
	lastTime time.Time
}

// NewRateLimiter creates a rate limiter allowing rate requests/sec with the
// given burst size per IP.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow reports whether the request from ip is within the rate limit.
func (rl *RateLimiter) Allow(_ context.Context, ip string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{tokens: float64(rl.burst), lastTime: now}
		rl.buckets[ip] = b
	}

	elapsed := now.Sub(b.lastTime).Seconds()
	b.tokens += elapsed * rl.rate
	if b.tokens > float64(rl.burst) {
		b.tokens = float64(rl.burst)
	}
	b.lastTime = now

	if b.tokens < 1 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// Close stops the eviction loop.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := rl.now().Add(-10 * time.Minute)
			for ip, b := range rl.buckets {
				if b.lastTime.Before(cutoff) {
					delete(rl.buckets, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// RedisLimiter is a fixed-window counter shared by every replica.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

// NewRedisLimiter allows perMinute requests per key in each one-minute window.
func NewRedisLimiter(client *redis.Client, perMinute int) *RedisLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RedisLimiter{
		client: client,
		limit:  int64(perMinute),
		window: time.Minute,
		prefix: "mch:ratelimit:",
	}
}

// Allow increments the key's counter for the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowKey := fmt.Sprintf("%s%s:%d", l.prefix, key, time.Now().Unix()/int64(l.window.Seconds()))

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit: redis: %w", err)
	}
	return incr.Val() <= l.limit, nil
}

// RateLimit returns an HTTP middleware that rejects requests exceeding the
// limiter with 429 Too Many Requests. A limiter error lets the request through.
func RateLimit(limiter Limiter, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := limiter.Allow(r.Context(), clientKey(r))
			if err != nil {
				logger.Warn("rate limiter unavailable", "error", err)
				ok = true
			}
			if !ok {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller by IP without the source port, so new
// connections from one client share a bucket.
func clientKey(r *http.Request) string {
	// Prefer X-Real-Ip set by chi's RealIP middleware.
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
