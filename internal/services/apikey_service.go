// Package services – APIKeyService
//
// This file implements credential issuance and resolution. Issued keys
// look like "card_<43 chars of base64url>"; only the SHA-256 hex digest is
// stored, so a key can be shown exactly once at creation time and resolved
// later by exact hash match.
package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/cardvault/card-vault-backend/internal/domain"
	"github.com/cardvault/card-vault-backend/internal/repo"
)

// keyPrefix marks issued credentials so leaked tokens are recognizable.
const keyPrefix = "card_"

// APIKeyService implements credential issuance and hash-based resolution.
type APIKeyService struct {
	// DB is the database handle used for all credential operations.
	DB *gorm.DB
}

// HashKey returns the SHA-256 hex digest of a raw API key.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// IssuedKey pairs a freshly created credential with its plaintext token.
// The token is not recoverable after this value is discarded.
type IssuedKey struct {
	Key    *domain.APIKey
	Secret string
}

// Issue creates a credential with the given display name, optional
// platform tag, and per-minute rate ceiling (<= 0 selects the default of
// 100). The plaintext token is returned exactly once.
func (s *APIKeyService) Issue(ctx context.Context, name string, platform *string, rateLimitPerMinute int) (*IssuedKey, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidKeyName
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	secret := keyPrefix + base64.RawURLEncoding.EncodeToString(buf)

	k, err := repo.CreateAPIKey(ctx, s.DB, HashKey(secret), name, platform, rateLimitPerMinute)
	if err != nil {
		return nil, err
	}
	return &IssuedKey{Key: k, Secret: secret}, nil
}

// Resolve maps a raw token to its credential record, or ErrNotFound when
// no credential matches the hash.
func (s *APIKeyService) Resolve(ctx context.Context, rawKey string) (*domain.APIKey, error) {
	k, err := repo.FindAPIKeyByHash(ctx, s.DB, HashKey(rawKey))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return k, nil
}
