package toolserver

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// rateLimiter enforces a per-IP sliding window. Empty buckets are
// dropped on each check so the map does not grow unbounded.
type rateLimiter struct {
	mu       sync.Mutex
	perMin   int
	requests map[string][]time.Time
	now      func() time.Time
}

func newRateLimiter(requestsPerMinute int) *rateLimiter {
	return &rateLimiter{
		perMin:   requestsPerMinute,
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// allow records a request for ip and reports whether it is within the
// window budget.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-time.Minute)

	kept := rl.requests[ip][:0]
	for _, t := range rl.requests[ip] {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= rl.perMin {
		rl.requests[ip] = kept
		return false
	}
	rl.requests[ip] = append(kept, now)
	return true
}

// clientIP extracts the caller's address, preferring the rightmost
// X-Forwarded-For entry. The rightmost hop is set by our own reverse
// proxy and is the hardest to spoof.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[len(parts)-1]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
