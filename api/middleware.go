package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

type RateLimiter struct {
	apiKey   string
	requests map[string]*ClientRequests
	mu       sync.Mutex
	now      func() time.Time
}

type ClientRequests struct {
	count    int
	lastSeen time.Time
}

const (
	maxRequests    = 100             // Maximum requests per window
	windowDuration = time.Minute * 5 // Window duration
)

func NewRateLimiter(apiKey string) *RateLimiter {
	return &RateLimiter{
		apiKey:   apiKey,
		requests: make(map[string]*ClientRequests),
		now:      time.Now,
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A matching API key bypasses rate limiting
		if l.apiKey != "" && r.Header.Get("Authorization") == l.apiKey {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := r.RemoteAddr

		l.mu.Lock()

		// Clean up old entries
		now := l.now()
		for ip, req := range l.requests {
			if now.Sub(req.lastSeen) > windowDuration {
				delete(l.requests, ip)
			}
		}

		client, exists := l.requests[clientIP]
		if !exists {
			client = &ClientRequests{lastSeen: now}
			l.requests[clientIP] = client
		}

		reset := time.Unix(client.lastSeen.Add(windowDuration).Unix(), 0).Format(time.RFC3339)
		if client.count >= maxRequests {
			l.mu.Unlock()
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", reset)
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		client.count++
		client.lastSeen = now
		remaining := maxRequests - client.count
		l.mu.Unlock()

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", reset)

		next.ServeHTTP(w, r)
	})
}
