package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitorLimiter keeps one token bucket per client IP. Stale buckets are
// evicted by a background sweep so the map does not grow unbounded.
type visitorLimiter struct {
	visitors map[string]*visitorEntry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

type visitorEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newVisitorLimiter(r rate.Limit, burst int) *visitorLimiter {
	vl := &visitorLimiter{
		visitors: make(map[string]*visitorEntry),
		rate:     r,
		burst:    burst,
	}
	go vl.sweep()
	return vl
}

func (vl *visitorLimiter) get(ip string) *rate.Limiter {
	vl.mu.Lock()
	defer vl.mu.Unlock()

	entry, ok := vl.visitors[ip]
	if !ok {
		limiter := rate.NewLimiter(vl.rate, vl.burst)
		vl.visitors[ip] = &visitorEntry{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	entry.lastSeen = time.Now()
	return entry.limiter
}

// sweep drops entries idle for more than 10 minutes.
func (vl *visitorLimiter) sweep() {
	for {
		time.Sleep(5 * time.Minute)
		vl.mu.Lock()
		for ip, entry := range vl.visitors {
			if time.Since(entry.lastSeen) > 10*time.Minute {
				delete(vl.visitors, ip)
			}
		}
		vl.mu.Unlock()
	}
}

// RateLimit limits requests per client IP. r is requests per second,
// burst is the bucket size.
//
// Login uses RateLimit(0.1, 5): one attempt every 10 seconds after an
// initial burst of 5.
func RateLimit(r rate.Limit, burst int) func(http.Handler) http.Handler {
	vl := newVisitorLimiter(r, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			if !vl.get(ip).Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests. Please try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP resolves the originating IP, honoring X-Forwarded-For set by
// the reverse proxy in front of the API.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First address in the list is the original client.
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	return r.RemoteAddr
}
