package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter enforces a fixed-window request ceiling. Counting is exact
// within a window and resets entirely at the window boundary, so a client
// that exhausts its quota at the end of one window may burst again at the
// start of the next; that is the accepted trade-off of the fixed-window
// scheme.
//
// Two tiers share the implementation:
//
//   - an IP tier keyed by client IP with a single default limit, applied
//     before authentication;
//   - a credential tier keyed by API key ID, where each request carries
//     its own ceiling (the key's configured per-minute allowance).
//
// Windows live in an in-process map; a background janitor evicts entries
// whose window has long expired. State is per-instance and not shared
// across replicas.
type RateLimiter struct {
	window       time.Duration
	defaultLimit int

	mu      sync.Mutex
	windows map[string]*fixedWindow

	// now is a seam for tests; defaults to time.Now.
	now func() time.Time

	stop chan struct{}
	once sync.Once
}

type fixedWindow struct {
	start time.Time
	count int
}

// NewRateLimiter builds a limiter with the given window length and
// default per-window limit, and starts its eviction janitor. Call Stop
// when the limiter is no longer needed.
func NewRateLimiter(window time.Duration, defaultLimit int) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if defaultLimit <= 0 {
		defaultLimit = 100
	}
	rl := &RateLimiter{
		window:       window,
		defaultLimit: defaultLimit,
		windows:      make(map[string]*fixedWindow),
		now:          time.Now,
		stop:         make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

// Stop terminates the eviction janitor.
func (rl *RateLimiter) Stop() { rl.once.Do(func() { close(rl.stop) }) }

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			cutoff := rl.now().Add(-2 * rl.window)
			rl.mu.Lock()
			for k, w := range rl.windows {
				if w.start.Before(cutoff) {
					delete(rl.windows, k)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Allow counts one request against key and reports whether it fits within
// limit for the current window, plus the seconds until the window resets.
func (rl *RateLimiter) Allow(key string, limit int) (allowed bool, retryAfter int) {
	if limit <= 0 {
		limit = rl.defaultLimit
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.window {
		w = &fixedWindow{start: now}
		rl.windows[key] = w
	}
	w.count++
	remaining := rl.window - now.Sub(w.start)
	sec := int(remaining / time.Second)
	if remaining%time.Second > 0 {
		sec++
	}
	return w.count <= limit, sec
}

// ByIP returns a middleware applying the default limit per client IP.
// Intended for unauthenticated routes.
func (rl *RateLimiter) ByIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := rl.Allow("ip:"+c.ClientIP(), rl.defaultLimit)
		if !ok {
			rejectRateLimited(c, retryAfter)
			return
		}
		c.Next()
	}
}

// ByCredential returns a middleware applying each credential's own
// per-window ceiling. It must run after authentication; requests without
// a resolved credential fall back to the IP tier so the route is never
// left unmetered.
func (rl *RateLimiter) ByCredential() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := CredentialFrom(c)
		if !ok {
			ok2, retryAfter := rl.Allow("ip:"+c.ClientIP(), rl.defaultLimit)
			if !ok2 {
				rejectRateLimited(c, retryAfter)
				return
			}
			c.Next()
			return
		}
		allowed, retryAfter := rl.Allow("key:"+key.ID, key.RateLimitPerMinute)
		if !allowed {
			rejectRateLimited(c, retryAfter)
			return
		}
		c.Next()
	}
}

func rejectRateLimited(c *gin.Context, retryAfter int) {
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "rate_limit_exceeded",
		"message":    "too many requests, slow down",
	})
}
