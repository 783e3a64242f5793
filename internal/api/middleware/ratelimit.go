package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/phrazzld/tasklane-api/internal/api/shared"
)

// Limits of the per-client limiter cache.
const (
	rateLimitCacheSize = 10000
	rateLimitCacheTTL  = 10 * time.Minute
)

// RateLimit returns middleware allowing perMinute requests per client IP with
// the given burst. A non-positive perMinute disables limiting. The client IP
// is taken from RemoteAddr, which chi's RealIP middleware has already
// rewritten when running behind a proxy.
func RateLimit(perMinute, burst int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst <= 0 {
		burst = 1
	}

	interval := time.Minute / time.Duration(perMinute)
	cache := expirable.NewLRU[string, *rate.Limiter](rateLimitCacheSize, nil, rateLimitCacheTTL)

	getLimiter := func(addr string) *rate.Limiter {
		limiter, ok := cache.Get(addr)
		if !ok {
			limiter = rate.NewLimiter(rate.Every(interval), burst)
			cache.Add(addr, limiter)
		}
		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := getLimiter(clientIP(r))

			reservation := limiter.Reserve()
			if !reservation.OK() || reservation.Delay() > 0 {
				retryAfter := int(math.Ceil(reservation.Delay().Seconds()))
				reservation.Cancel()

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				shared.RespondWithError(w, r, http.StatusTooManyRequests, "Too many requests",
					shared.WithKind("rate_limited"))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(math.Max(0, math.Floor(limiter.Tokens())))))
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
