package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/socialvibe/socialvibe/internal/logging"
)

// RateLimiter caps requests per client IP over a fixed window. Counters live
// in Redis so every API instance draws from the same budget.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	scope  string
}

func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration, scope string) *RateLimiter {
	return &RateLimiter{rdb: rdb, limit: limit, window: window, scope: scope}
}

// NewAuthRateLimiter guards register and login against credential stuffing.
func NewAuthRateLimiter(rdb *redis.Client) *RateLimiter {
	return NewRateLimiter(rdb, 5, time.Minute, "auth")
}

// NewAPIRateLimiter is the general cap in front of the whole API.
func NewAPIRateLimiter(rdb *redis.Client) *RateLimiter {
	return NewRateLimiter(rdb, 100, time.Minute, "api")
}

// NewAIRateLimiter keeps the suggestion and image description endpoints from
// burning through the upstream model quota.
func NewAIRateLimiter(rdb *redis.Client) *RateLimiter {
	return NewRateLimiter(rdb, 10, time.Minute, "ai")
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.rdb == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := fmt.Sprintf("socialvibe:rl:%s:%s", rl.scope, clientIP(r))
		count, ttl, err := rl.take(r.Context(), key)
		if err != nil {
			// Redis being down must not take the API with it.
			logging.Warn("rate limiter unavailable", map[string]any{
				"scope": rl.scope,
				"error": err.Error(),
			})
			next.ServeHTTP(w, r)
			return
		}

		remaining := rl.limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if int(count) > rl.limit {
			w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
			writeRateLimited(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// take bumps the window counter and reports its value and remaining life.
// The expiry is only set when the key is fresh, so the window does not slide.
func (rl *RateLimiter) take(ctx context.Context, key string) (int64, time.Duration, error) {
	pipe := rl.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, rl.window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}

func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"error":"RateLimited","message":"Too many requests"}`))
}

// clientIP resolves the originating address, preferring the proxy headers the
// deployment sets in front of the API.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
