package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	h "meetingscheduler/internal/delivery/http/helpers"
	"meetingscheduler/internal/domain"
)

// RateLimit returns a wrapper that spends one unit of the caller's budget per request.
// Requests are keyed by the authenticated actor when RequireAuth ran first, and by client IP
// otherwise. A failing limiter lets the request through.
func RateLimit(limiter domain.RateLimiter, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + clientIP(r)
			if actor, ok := ActorFromContext(r.Context()); ok {
				key = "user:" + actor.UserID
			}
			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limiter unavailable, allowing request", "key", key, "err", err)
				next(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if !res.Allowed {
				secs := int(math.Ceil(res.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeRateLimited, domain.ErrRateLimited.Error())
				return
			}
			next(w, r)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
