package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_Allow_FixedWindowCounting(t *testing.T) {
	rl := NewRateLimiter(time.Minute, 100)
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		if ok, _ := rl.Allow("k", 5); !ok {
			t.Fatalf("request %d rejected, want allowed", i+1)
		}
	}
	ok, retryAfter := rl.Allow("k", 5)
	if ok {
		t.Fatal("6th request allowed, want rejected")
	}
	if retryAfter <= 0 || retryAfter > 60 {
		t.Fatalf("retryAfter = %d, want within (0,60]", retryAfter)
	}
}

func TestRateLimiter_WindowRollover_ResetsCounter(t *testing.T) {
	rl := NewRateLimiter(time.Minute, 100)
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		rl.Allow("k", 3)
	}
	if ok, _ := rl.Allow("k", 3); ok {
		t.Fatal("over-limit request allowed inside window")
	}

	// Crossing the boundary restarts the count entirely.
	now = now.Add(time.Minute)
	for i := 0; i < 3; i++ {
		if ok, _ := rl.Allow("k", 3); !ok {
			t.Fatalf("post-rollover request %d rejected", i+1)
		}
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(time.Minute, 100)
	defer rl.Stop()

	for i := 0; i < 2; i++ {
		rl.Allow("a", 2)
	}
	if ok, _ := rl.Allow("a", 2); ok {
		t.Fatal("key a over limit but allowed")
	}
	if ok, _ := rl.Allow("b", 2); !ok {
		t.Fatal("key b rejected despite fresh window")
	}
}

func TestRateLimiter_ByIP_Returns429WithEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(time.Minute, 2)
	defer rl.Stop()

	r := gin.New()
	r.Use(RequestID(), rl.ByIP())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(last, req)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("3rd request -> %d, want 429", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
	if body := last.Body.String(); !strings.Contains(body, "rate_limit_exceeded") {
		t.Fatalf("body %q missing rate_limit_exceeded", body)
	}
	if rid := last.Header().Get("X-Request-ID"); rid == "" {
		t.Fatal("missing X-Request-ID on rejection")
	}
}

func TestRateLimiter_ByCredential_UsesPerKeyCeiling(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(time.Minute, 100)
	defer rl.Stop()

	r := gin.New()
	// Fake auth stashing a tightly limited credential.
	r.Use(func(c *gin.Context) {
		c.Set(ctxKeyCredential, Credential{ID: "key-1", RateLimitPerMinute: 1})
		c.Next()
	})
	r.Use(rl.ByCredential())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("1st request -> %d, want 200", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("2nd request -> %d, want 429", w.Code)
	}
}

func TestRateLimiter_ByCredential_FallsBackToIPWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(time.Minute, 1)
	defer rl.Stop()

	r := gin.New()
	r.Use(rl.ByCredential())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.9:1"
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("1st request -> %d, want 200", w.Code)
	}
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.9:1"
	r.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("2nd request -> %d, want 429 (IP fallback)", w.Code)
	}
}
