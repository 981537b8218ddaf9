package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients use to convey an
// idempotency key on unsafe operations (e.g. POST /withdraw).
//
// The key is validated and stashed for handlers and audit logs, but no
// server-side deduplication is performed: a retried request with the
// same key withdraws a second card. Callers that need exactly-once
// semantics must reconcile against the transaction log.
const HeaderIdempotencyKey = "Idempotency-Key"

const ctxKeyIdemKey = "idem.key"

// GetIdempotencyKey returns the validated idempotency key stored in the
// Gin context by IdempotencyValidator. The second return value indicates
// presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IdempotencyOptions configures header validation for IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative
	// RFC7230-like token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyValidator validates the Idempotency-Key header (if present)
// and stashes it in the request context.
//
// Behavior:
//   - If the header is absent: the middleware is a no-op.
//   - If the header fails validation: responds 400 with a compact error body.
//   - Otherwise: stashes the key and invokes the next handler.
func IdempotencyValidator(opts IdempotencyOptions) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "invalid_parameter",
				"message":    "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)
		c.Next()
	}
}
