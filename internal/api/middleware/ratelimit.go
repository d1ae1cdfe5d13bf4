package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/api/response"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/redis"
	"github.com/rs/zerolog/log"
)

// RateLimitMiddleware limits requests per client IP using Redis
type RateLimitMiddleware struct {
	limiter *redis.RateLimiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(limiter *redis.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit rejects requests over the per-minute budget with 429
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, remaining, reset, err := m.limiter.Allow(r.Context(), r.RemoteAddr)
		if err != nil {
			// Rate limiting is advisory; let the request through if
			// Redis is unreachable.
			log.Warn().Err(err).Msg("rate limit check failed")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			retryAfter := int64(time.Until(reset).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
