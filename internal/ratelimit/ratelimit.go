// Package ratelimit throttles public form and API endpoints per client.
package ratelimit

import (
	"context"
	"log"
	"net"
	"net/http"
)

// Limiter decides whether one more request for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Middleware rejects requests over the limit with 429. Keys are scoped per
// client IP, method and path. When the limiter itself fails the request is
// let through and the error logged.
func Middleware(l Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "rl:" + clientIP(r) + ":" + r.Method + ":" + r.URL.Path

			allowed, err := l.Allow(r.Context(), key)
			if err != nil {
				log.Printf("[ratelimit] limiter error for %s: %v", key, err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
