// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the APIKey
// (credential) model. Raw keys never reach this layer; callers pass the
// SHA-256 hex digest.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardvault/card-vault-backend/internal/domain"
)

// FindAPIKeyByHash resolves a key hash to its credential record, or
// ErrNotFound when no key matches.
func FindAPIKeyByHash(ctx context.Context, db *gorm.DB, keyHash string) (*domain.APIKey, error) {
	var k domain.APIKey
	if err := db.WithContext(ctx).Where("key_hash = ?", keyHash).First(&k).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

// CreateAPIKey inserts a credential record for the given key hash. The
// rate limit defaults to 100 requests per minute when limit <= 0.
func CreateAPIKey(ctx context.Context, db *gorm.DB, keyHash, name string, platform *string, limit int) (*domain.APIKey, error) {
	if limit <= 0 {
		limit = 100
	}
	k := &domain.APIKey{
		ID:                 uuid.NewString(),
		KeyHash:            keyHash,
		Name:               name,
		Platform:           platform,
		IsActive:           true,
		RateLimitPerMinute: limit,
		CreatedAt:          time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(k).Error; err != nil {
		return nil, err
	}
	return k, nil
}

// TouchAPIKeyLastUsed stamps last_used_at for the key. Failures are the
// caller's to log; authentication never blocks on this write.
func TouchAPIKeyLastUsed(ctx context.Context, db *gorm.DB, id string, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.APIKey{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}
