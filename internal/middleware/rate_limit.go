package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"travelbook/airports/internal/common"
	"travelbook/airports/internal/constants"

	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an IP may stay silent before its bucket is dropped.
const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	rps         rate.Limit
	burst       int
	whitelisted map[string]bool
	idleTTL     time.Duration
	lastSweep   time.Time
	now         func() time.Time
}

func NewIPRateLimiter(rps float64, burst int, whitelist ...string) *IPRateLimiter {
	wl := make(map[string]bool, len(whitelist))
	for _, ip := range whitelist {
		wl[ip] = true
	}
	return &IPRateLimiter{
		visitors:    make(map[string]*visitor),
		rps:         rate.Limit(rps),
		burst:       burst,
		whitelisted: wl,
		idleTTL:     limiterIdleTTL,
		lastSweep:   time.Now(),
		now:         time.Now,
	}
}

// WithClock overrides the time source used for idle eviction.
func (l *IPRateLimiter) WithClock(now func() time.Time) *IPRateLimiter {
	l.now = now
	l.lastSweep = now()
	return l
}

func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) >= l.idleTTL {
				delete(l.visitors, key)
			}
		}
		l.lastSweep = now
	}

	if v, exists := l.visitors[ip]; exists {
		v.lastSeen = now
		return v.limiter
	}
	limiter := rate.NewLimiter(l.rps, l.burst)
	l.visitors[ip] = &visitor{limiter: limiter, lastSeen: now}
	return limiter
}

// Middleware rejects requests over the per-IP budget with 429.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if l.whitelisted[ip] {
			next.ServeHTTP(w, r)
			return
		}

		if !l.getLimiter(ip).Allow() {
			common.RespondError(w, time.Now(), nil, constants.MsgRateLimited, false, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
