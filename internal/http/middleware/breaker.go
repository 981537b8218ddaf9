// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements a per-route circuit breaker. Each route path gets
// its own lazily created breaker with the classic closed/open/half-open
// state machine:
//
//   - Closed: requests pass; status >= 500 (or a recovered panic turned
//     into a 500) counts as a failure, status < 400 resets the counter.
//     Reaching the failure threshold trips the breaker to Open.
//   - Open: requests are rejected immediately with 503. Once the reset
//     timeout has elapsed since the trip, the next request proceeds in
//     Half-Open.
//   - Half-Open: requests pass; a run of consecutive successes closes the
//     breaker, any failure reopens it.
//
// The breaker sits outermost in the middleware chain so that rejections
// from inner layers (rate limiter, auth) are classified by status code
// only; 4xx outcomes never count as breaker failures.
//
// State is process-local and resets on restart. The registry is an
// explicit object injected into the router so tests can instantiate
// isolated instances.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Breaker states.
const (
	BreakerClosed   = "closed"
	BreakerOpen     = "open"
	BreakerHalfOpen = "half_open"
)

var breakerTrips = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "circuit_breaker_trips_total",
		Help: "Circuit breaker open transitions by route.",
	},
	[]string{"path"},
)

func init() {
	prometheus.MustRegister(breakerTrips)
}

// BreakerOptions tunes a BreakerRegistry; zero values select the defaults
// noted on each field.
type BreakerOptions struct {
	// FailureThreshold trips the breaker after this many failures without
	// an intervening success (default 10).
	FailureThreshold int
	// ResetTimeout is how long an open breaker waits before probing in
	// half-open (default 30s).
	ResetTimeout time.Duration
	// HalfOpenSuccesses closes the breaker after this many consecutive
	// half-open successes (default 3).
	HalfOpenSuccesses int
}

// routeBreaker holds the state machine for one route. All fields are
// guarded by mu.
type routeBreaker struct {
	mu           sync.Mutex
	state        string
	failures     int
	successCount int
	lastFailure  time.Time
}

// BreakerRegistry owns one breaker per route path, created on first use.
// Safe for concurrent use from all request-handling goroutines.
type BreakerRegistry struct {
	opts BreakerOptions

	mu       sync.Mutex
	breakers map[string]*routeBreaker

	// now is a seam for tests; defaults to time.Now.
	now func() time.Time
}

// NewBreakerRegistry constructs a registry with the given options.
func NewBreakerRegistry(opts BreakerOptions) *BreakerRegistry {
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = 10
	}
	if opts.ResetTimeout <= 0 {
		opts.ResetTimeout = 30 * time.Second
	}
	if opts.HalfOpenSuccesses <= 0 {
		opts.HalfOpenSuccesses = 3
	}
	return &BreakerRegistry{
		opts:     opts,
		breakers: make(map[string]*routeBreaker),
		now:      time.Now,
	}
}

// breakerFor returns (creating if absent) the breaker for a route path.
func (r *BreakerRegistry) breakerFor(path string) *routeBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[path]; ok {
		return b
	}
	b := &routeBreaker{state: BreakerClosed}
	r.breakers[path] = b
	return b
}

// State reports the current state of the breaker for a route; routes
// never seen report closed.
func (r *BreakerRegistry) State(path string) string {
	b := r.breakerFor(path)
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// allow decides whether a request may proceed, performing the
// open→half-open transition when the reset timeout has elapsed. The
// transition request itself proceeds (it is the probe).
func (b *routeBreaker) allow(now time.Time, resetTimeout time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != BreakerOpen {
		return true
	}
	if now.Sub(b.lastFailure) >= resetTimeout {
		b.state = BreakerHalfOpen
		b.successCount = 0
		return true
	}
	return false
}

// recordSuccess applies a < 400 outcome.
func (b *routeBreaker) recordSuccess(threshold int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case BreakerHalfOpen:
		b.successCount++
		if b.successCount >= threshold {
			b.state = BreakerClosed
			b.failures = 0
			b.successCount = 0
		}
	case BreakerClosed:
		b.failures = 0
	}
}

// recordFailure applies a >= 500 outcome. Returns true when this failure
// tripped the breaker open.
func (b *routeBreaker) recordFailure(now time.Time, failureThreshold int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = now
	switch b.state {
	case BreakerClosed:
		if b.failures >= failureThreshold {
			b.state = BreakerOpen
			return true
		}
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.successCount = 0
		return true
	}
	return false
}

// Handler returns a Gin middleware enforcing the per-route breaker.
//
// Rejections emit:
//
//	HTTP/1.1 503 Service Unavailable
//	{
//	  "request_id": "<uuid>",
//	  "code":       "circuit_breaker_open",
//	  "message":    "service temporarily unavailable, retry later"
//	}
func (r *BreakerRegistry) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		b := r.breakerFor(path)

		if !b.allow(r.now(), r.opts.ResetTimeout) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "circuit_breaker_open",
				"message":    "service temporarily unavailable, retry later",
			})
			return
		}

		c.Next()

		status := c.Writer.Status()
		switch {
		case status >= http.StatusInternalServerError:
			if b.recordFailure(r.now(), r.opts.FailureThreshold) {
				breakerTrips.WithLabelValues(path).Inc()
			}
		case status < http.StatusBadRequest:
			b.recordSuccess(r.opts.HalfOpenSuccesses)
		}
		// 4xx outcomes are the caller's fault; they neither trip nor heal.
	}
}
