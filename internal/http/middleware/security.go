package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures the hardening headers attached to every
// response. HSTS is opt-in and only emitted on HTTPS requests (direct TLS
// or X-Forwarded-Proto from the proxy); NoStore marks responses
// uncacheable, which matters here because withdrawal responses carry
// one-time card codes.
type SecurityOptions struct {
	EnableHSTS   bool          // only when traffic is HTTPS end-to-end
	HSTSMaxAge   time.Duration // defaults to 180 days when <= 0
	NoStore      bool          // Cache-Control: no-store (+ legacy Pragma/Expires)
	EnablePolicy bool          // Permissions-Policy and friends (browser-only)
}

// SecurityHeaders returns a middleware that sets a conservative header
// posture for a JSON API: nosniff, frame denial, and no referrer always;
// cache suppression, browser feature policies, and HSTS per the options.
// No CSP since nothing here serves HTML. When an X-Request-ID header is
// already on the response it is added to Access-Control-Expose-Headers so
// browser clients can read it for support requests.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = 180 * 24 * time.Hour
	}
	hstsValue := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		// Never on plain HTTP: a cached HSTS policy from a misconfigured
		// deployment locks clients out.
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hstsValue)
		}

		if rid := h.Get("X-Request-ID"); rid != "" {
			const hdr = "Access-Control-Expose-Headers"
			switch cur := h.Get(hdr); {
			case cur == "":
				h.Set(hdr, "X-Request-ID")
			case !strings.Contains(cur, "X-Request-ID"):
				h.Set(hdr, cur+", X-Request-ID")
			}
		}

		c.Next()
	}
}

// isHTTPS reports whether the request arrived over HTTPS, either directly
// or via a proxy that set X-Forwarded-Proto.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
