package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter controls how frequently a caller may perform an action.
type RateLimiter interface {
	Allow(key string) bool
}

type caller struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// keyRateLimiter tracks request rates per key (typically an IP address),
// expiring idle entries.
type keyRateLimiter struct {
	mu      sync.Mutex
	callers map[string]*caller
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

// NewKeyRateLimiter constructs a per-key limiter allowing up to `requests`
// events per `window` with an additional burst capacity. Entries expire after
// ttl of inactivity.
func NewKeyRateLimiter(requests int, window time.Duration, burst int, ttl time.Duration) RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if burst <= 0 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &keyRateLimiter{
		callers: make(map[string]*caller),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (l *keyRateLimiter) Allow(key string) bool {
	if key == "" {
		key = "unknown"
	}

	now := l.now()

	l.mu.Lock()
	c, ok := l.callers[key]
	if ok {
		c.lastSeen = now
	} else {
		c = &caller{limiter: rate.NewLimiter(l.limit, l.burst), lastSeen: now}
		l.callers[key] = c
	}
	for k, v := range l.callers {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.callers, k)
		}
	}
	l.mu.Unlock()

	return c.limiter.Allow()
}
