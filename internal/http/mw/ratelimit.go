package mw

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig controls per client rate limiting of the API.
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of requests per minute per IP.
	// Zero or less disables limiting.
	RequestsPerMinute int
	// Exempt lists paths that are never limited, such as liveness probes.
	Exempt []string
}

// RateLimitByIP returns a Chi middleware that rate limits by client IP.
// Rejected requests get a 429 problem document like the rest of the API.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.RequestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := httprate.Limit(cfg.RequestsPerMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(tooManyRequests),
	)
	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(cfg.Exempt, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"title":  http.StatusText(http.StatusTooManyRequests),
		"status": http.StatusTooManyRequests,
		"detail": "rate limit exceeded, retry later",
	})
}
