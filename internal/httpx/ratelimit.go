package httpx

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const rateLimitMessage = "Too many requests from this IP. Try again in one hour."

type multiLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	ttl       time.Duration
	entries   map[string]*limBucket
	lastSweep time.Time
	now       func() time.Time
}

type limBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newMultiLimiter(limit rate.Limit, burst int, ttl time.Duration) *multiLimiter {
	return &multiLimiter{
		limit:   limit,
		burst:   burst,
		ttl:     ttl,
		entries: make(map[string]*limBucket),
		now:     time.Now,
	}
}

func (m *multiLimiter) allow(key string) bool {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.entries[key]
	if b == nil {
		b = &limBucket{lim: rate.NewLimiter(m.limit, m.burst), lastSeen: now}
		m.entries[key] = b
	}
	b.lastSeen = now

	// idle buckets are swept at most once per ttl
	if now.Sub(m.lastSweep) >= m.ttl {
		for k, v := range m.entries {
			if now.Sub(v.lastSeen) > m.ttl {
				delete(m.entries, k)
			}
		}
		m.lastSweep = now
	}
	return b.lim.AllowN(now, 1)
}

type RateLimitConfig struct {
	PerHour        int
	TrustForwarded bool
}

// RateLimit is a per-client-IP token bucket refilling PerHour tokens an hour
// with a burst of PerHour. Zero or negative PerHour disables it.
func RateLimit(cfg RateLimitConfig, rs *Responder, next http.Handler) http.Handler {
	if cfg.PerHour <= 0 {
		return next
	}
	ml := newMultiLimiter(rate.Every(time.Hour/time.Duration(cfg.PerHour)), cfg.PerHour, 2*time.Hour)
	return rateLimit(ml, cfg.TrustForwarded, rs, next)
}

func rateLimit(ml *multiLimiter, trustForwarded bool, rs *Responder, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ml.allow(clientIP(r, trustForwarded)) {
			w.Header().Set("Retry-After", "3600")
			rs.Fail(w, r, NewError(http.StatusTooManyRequests, rateLimitMessage, nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
			if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
