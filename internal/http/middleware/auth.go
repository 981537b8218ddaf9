package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cardvault/card-vault-backend/internal/domain"
	"github.com/cardvault/card-vault-backend/internal/repo"
)

// HeaderAPIKey carries the caller's raw credential token.
const HeaderAPIKey = "X-API-Key"

// ctxKeyCredential is the gin context key under which the resolved
// credential is stashed.
const ctxKeyCredential = "auth_credential"

// Credential is the authenticated identity attached to a request.
type Credential struct {
	ID                 string
	Name               string
	RateLimitPerMinute int
}

// KeyResolver maps a raw token to its stored credential. Satisfied by
// services.APIKeyService.
type KeyResolver interface {
	Resolve(ctx context.Context, rawKey string) (*domain.APIKey, error)
}

// LastUsedToucher updates a credential's last-used timestamp. Satisfied
// by a thin wrapper over the repo; optional (nil disables touching).
type LastUsedToucher func(ctx context.Context, keyID string, at time.Time)

// CredentialFrom extracts the authenticated credential from the request
// context, if authentication ran and succeeded.
func CredentialFrom(c *gin.Context) (Credential, bool) {
	v, ok := c.Get(ctxKeyCredential)
	if !ok {
		return Credential{}, false
	}
	cred, ok := v.(Credential)
	return cred, ok
}

// RequireAPIKey authenticates requests by the X-API-Key header.
//
// A missing or unknown token yields 401 unauthorized; a known but
// deactivated credential yields 403 forbidden. On success the credential
// is stashed in the context for downstream middleware (rate limiting)
// and handlers, and its last-used timestamp is refreshed off the request
// path.
func RequireAPIKey(resolver KeyResolver, touch LastUsedToucher) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderAPIKey)
		if raw == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "missing API key")
			return
		}

		key, err := resolver.Resolve(c.Request.Context(), raw)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				abortAuth(c, http.StatusUnauthorized, "unauthorized", "invalid API key")
				return
			}
			log.Error().Err(err).Msg("credential lookup failed")
			abortAuth(c, http.StatusInternalServerError, "internal_error", "something went wrong")
			return
		}
		if !key.IsActive {
			abortAuth(c, http.StatusForbidden, "forbidden", "API key is disabled")
			return
		}

		c.Set(ctxKeyCredential, Credential{
			ID:                 key.ID,
			Name:               key.Name,
			RateLimitPerMinute: key.RateLimitPerMinute,
		})

		if touch != nil {
			// Fire and forget; last-used is advisory metadata.
			go touch(context.WithoutCancel(c.Request.Context()), key.ID, time.Now().UTC())
		}

		c.Next()
	}
}

func abortAuth(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       code,
		"message":    message,
	})
}
