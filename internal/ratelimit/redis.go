package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jigsaw/internal/metrics"
)

// Limiter is a fixed-window request limiter backed by Redis INCR/EXPIRE.
// A nil client makes it fail open.
type Limiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

// New connects to Redis at addr. If addr is empty or the ping fails the
// limiter allows every request, keeping the server available.
func New(addr, password string, db, limit int, window time.Duration) *Limiter {
	l := &Limiter{max: limit, window: window}
	if addr == "" {
		return l
	}
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("redis unavailable; rate limiting disabled")
		_ = c.Close()
		return l
	}
	l.client = c
	return l
}

// Enabled reports whether a Redis connection is in use.
func (l *Limiter) Enabled() bool { return l != nil && l.client != nil }

// Close releases the Redis connection.
func (l *Limiter) Close() error {
	if !l.Enabled() {
		return nil
	}
	return l.client.Close()
}

// Middleware limits requests per client IP.
// key format: rl:<window_seconds>:<ip>
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		endpoint := routePattern(r)
		key := "rl:" + strconv.FormatInt(int64(l.window.Seconds()), 10) + ":" + clientIP(r)
		ctx := r.Context()

		val, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			w.Header().Set("X-RateLimit-Error", "redis-error")
			next.ServeHTTP(w, r)
			return
		}
		if val == 1 {
			l.client.Expire(ctx, key, l.window)
		}
		if val > int64(l.max) {
			metrics.RLBlocked.WithLabelValues(endpoint).Inc()
			http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
			return
		}
		metrics.RLRequests.WithLabelValues(endpoint).Inc()
		next.ServeHTTP(w, r)
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unknown"
}

// clientIP strips the port; chi's RealIP middleware has already rewritten
// RemoteAddr when a proxy header is present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
