package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// ClientID identifies the caller by remote IP. Run chi's RealIP middleware
// first when the server sits behind a trusted proxy.
func ClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Middleware rejects requests over their client's budget with 429.
func Middleware(l *Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := ClientID(r)
			allowed, info := l.Allow(clientID, r.URL.Path, r.Method)
			setHeaders(w, info)
			if !allowed {
				logger.Warn("rate limit exceeded",
					zap.String("client", clientID),
					zap.String("path", r.URL.Path),
					zap.Int("limit", info.Limit),
					zap.Time("reset_at", info.ResetTime),
				)
				writeLimited(w, info)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// setHeaders sets standard rate limit headers on the response.
func setHeaders(w http.ResponseWriter, info Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// writeLimited writes a 429 Too Many Requests response in the API error shape.
func writeLimited(w http.ResponseWriter, info Info) {
	body := map[string]any{
		"error":     "Rate limit exceeded. Please try again later.",
		"status":    http.StatusTooManyRequests,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Round(time.Second).Seconds())
		if secs < 1 {
			secs = 1
		}
		body["retry_after"] = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(body)
}
