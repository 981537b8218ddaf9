package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions adds extra header names (case-insensitive) to the
// built-in mask set: Authorization, Cookie, Set-Cookie, X-API-Key,
// X-Webhook-Signature. Masked headers log as "[REDACTED]" wholesale.
type RedactOptions struct {
	MaskHeaders []string
}

// RedactingLogger is the access logger: one structured line per request
// with query strings and header values scrubbed before they reach the
// log stream. Bodies are never logged. Pattern scrubbing covers raw API
// credentials ("card_..." tokens), UUIDs, emails, and phone numbers;
// level follows status (info / warn 4xx / error 5xx). A request-scoped
// logger is stashed in the context for LoggerFrom.
//
// Scrubbing narrows the leak surface; it cannot catch PII smuggled in
// free-form values, so callers should still keep secrets out of URLs.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	// Order matters below: credentials and UUIDs first, phone last;
	// the phone pattern is loose enough to eat digit runs from either.
	keyRE := regexp.MustCompile(`\bcard_[A-Za-z0-9_-]{43}`)
	uuidRE := regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE := regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE := regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)

	redact := func(s string) string {
		if s == "" {
			return s
		}
		out := keyRE.ReplaceAllString(s, "[REDACTED:key]")
		out = uuidRE.ReplaceAllString(out, "[REDACTED:id]")
		out = emailRE.ReplaceAllString(out, "[REDACTED:email]")
		out = phoneRE.ReplaceAllString(out, "[REDACTED:phone]")
		return out
	}

	maskHeaders := map[string]struct{}{
		"authorization":       {},
		"cookie":              {},
		"set-cookie":          {},
		"x-api-key":           {},
		"x-webhook-signature": {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		safeQuery := redact(c.Request.URL.RawQuery)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(strings.Join(vv, ", "))
		}

		// RequestID runs first, so the response header is already set.
		reqID := c.Writer.Header().Get("X-Request-ID")
		if reqID == "" {
			reqID = c.GetHeader("X-Request-ID")
		}

		l := log.With().
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set("logger", &l)

		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
