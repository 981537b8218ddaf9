package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func securityRouter(opt SecurityOptions, pre ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	for _, mw := range pre {
		r.Use(mw)
	}
	r.Use(SecurityHeaders(opt))
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestSecurityHeaders_BaselineOnly(t *testing.T) {
	r := securityRouter(SecurityOptions{}, func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-123")
		c.Next()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	h := w.Header()
	if h.Get("X-Content-Type-Options") != "nosniff" ||
		h.Get("X-Frame-Options") != "DENY" ||
		h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline headers missing: %#v", h)
	}
	// options all off: nothing optional should appear
	for _, hdr := range []string{"Permissions-Policy", "X-Permitted-Cross-Domain-Policies",
		"Cache-Control", "Pragma", "Expires", "Strict-Transport-Security"} {
		if h.Get(hdr) != "" {
			t.Fatalf("unexpected %s header: %q", hdr, h.Get(hdr))
		}
	}
	if got := h.Get("Access-Control-Expose-Headers"); got != "X-Request-ID" {
		t.Fatalf("expose header = %q; want X-Request-ID", got)
	}
}

func TestSecurityHeaders_ExposeHeaderAppendAndNoDuplicate(t *testing.T) {
	r := securityRouter(SecurityOptions{}, func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-abc")
		c.Header("Access-Control-Expose-Headers", "Foo")
		c.Next()
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != "Foo, X-Request-ID" {
		t.Fatalf("expose header = %q; want 'Foo, X-Request-ID'", got)
	}

	r = securityRouter(SecurityOptions{}, func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-xyz")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, Foo")
		c.Next()
	})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != "X-Request-ID, Foo" {
		t.Fatalf("expose header = %q; want unchanged 'X-Request-ID, Foo'", got)
	}
}

func TestSecurityHeaders_FullPosture_TLS(t *testing.T) {
	r := securityRouter(SecurityOptions{
		EnableHSTS:   true,
		HSTSMaxAge:   24 * time.Hour,
		NoStore:      true,
		EnablePolicy: true,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.TLS = &tls.ConnectionState{}
	r.ServeHTTP(w, req)

	h := w.Header()
	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("missing policy headers: %#v", h)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("missing cache headers: %#v", h)
	}
	want := "max-age=86400; includeSubDomains; preload"
	if got := h.Get("Strict-Transport-Security"); got != want {
		t.Fatalf("HSTS = %q; want %q", got, want)
	}
}

func TestSecurityHeaders_HSTS_RequiresHTTPS(t *testing.T) {
	r := securityRouter(SecurityOptions{EnableHSTS: true, HSTSMaxAge: time.Hour})

	// plain HTTP: no HSTS
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("HSTS on plain HTTP: %q", got)
	}

	// HTTPS via proxy header
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Strict-Transport-Security"); !strings.HasPrefix(got, "max-age=3600") {
		t.Fatalf("HSTS via X-Forwarded-Proto = %q", got)
	}
}

func Test_isHTTPS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTTPS(req) {
		t.Fatalf("plain HTTP should not be https")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	if !isHTTPS(req) {
		t.Fatalf("TLS request should be https")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "HTTPS")
	if !isHTTPS(req) {
		t.Fatalf("X-Forwarded-Proto should be case-insensitive")
	}
}
