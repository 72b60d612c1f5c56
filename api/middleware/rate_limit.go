package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/matjara-app/matjara-backend/api/responses"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/logger"
)

// RateLimiterStore is the counter surface the limiter needs from Redis.
type RateLimiterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	RateLimitKey(scope, id string) string
}

// RateLimitPolicy defines per-IP throttling for one traffic surface.
type RateLimitPolicy struct {
	scope  string
	window time.Duration
	limit  int
}

// NewRateLimitPolicy builds a policy with the supplied window and limit.
func NewRateLimitPolicy(scope string, window time.Duration, limit int) RateLimitPolicy {
	return RateLimitPolicy{
		scope:  strings.ToLower(strings.TrimSpace(scope)),
		window: window,
		limit:  limit,
	}
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

// RateLimit enforces a per-IP counter for sensitive endpoints. The counter is
// best effort: a store failure lets the request through rather than locking
// out all traffic.
func RateLimit(policy RateLimitPolicy, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := clientIP(r)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := store.RateLimitKey(policy.scope, ip)
			count, err := store.Incr(ctx, key)
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "scope", policy.scope), "rate limit store unavailable")
				}
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				if err := store.Expire(ctx, key, policy.window); err != nil && logg != nil {
					logg.Warn(logg.WithField(ctx, "scope", policy.scope), "rate limit expire failed")
				}
			}
			if count > int64(policy.limit) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
