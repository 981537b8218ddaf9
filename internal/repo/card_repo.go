// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Card
// model, including the exclusive-claim primitive used by the allocation
// engine.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a card is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cardvault/card-vault-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service
// layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// claimRepickLimit bounds the re-pick loop in ClaimRandomUnusedCard for
// engines whose row locks are advisory (SQLite ignores FOR UPDATE).
const claimRepickLimit = 5

// randomOrder returns the dialect-specific random ordering expression.
func randomOrder(tx *gorm.DB) string {
	if tx.Dialector.Name() == "mysql" {
		return "RAND()"
	}
	return "RANDOM()"
}

// ClaimRandomUnusedCard selects one unused card in the category uniformly
// at random, locks it for the duration of tx, and marks it used by usedBy.
// It must be called inside a transaction; the lock (SELECT ... FOR UPDATE
// on engines that support it) guarantees no concurrent transaction can
// claim the same row.
//
// The mark-used UPDATE is conditional on is_used still being false; if
// another transaction won the row despite the lock (advisory-lock
// engines), the pick is retried a bounded number of times.
//
// Returns ErrNotFound when the category holds no unused cards.
func ClaimRandomUnusedCard(ctx context.Context, tx *gorm.DB, categoryID, usedBy string) (*domain.Card, error) {
	for i := 0; i < claimRepickLimit; i++ {
		var card domain.Card
		err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("category_id = ? AND is_used = ?", categoryID, false).
			Order(randomOrder(tx)).
			Limit(1).
			First(&card).Error
		if err != nil {
			return nil, err
		}

		res := tx.WithContext(ctx).
			Model(&domain.Card{}).
			Where("id = ? AND is_used = ?", card.ID, false).
			Updates(map[string]any{
				"is_used":    true,
				"used_by":    usedBy,
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			card.IsUsed = true
			card.UsedBy = &usedBy
			return &card, nil
		}
		// Row was taken between pick and mark; pick again.
	}
	return nil, errors.New("card claim contention exceeded retry budget")
}

// CreateCards bulk-inserts cards with fresh UUIDs for the given codes.
// Codes that collide with existing rows are skipped individually so one
// duplicate does not sink the whole batch. Returns the number inserted
// and the number skipped as duplicates.
func CreateCards(ctx context.Context, db *gorm.DB, codes []string, categoryID *string) (inserted, duplicates int, err error) {
	now := time.Now().UTC()
	for _, code := range codes {
		c := &domain.Card{
			ID:         uuid.NewString(),
			Code:       code,
			CategoryID: categoryID,
			CreatedAt:  now,
		}
		if err := db.WithContext(ctx).Create(c).Error; err != nil {
			if isDuplicateErr(err) {
				duplicates++
				continue
			}
			return inserted, duplicates, err
		}
		inserted++
	}
	return inserted, duplicates, nil
}

// ExistingCodes returns the subset of codes already present in the cards
// table, preserving no particular order.
func ExistingCodes(ctx context.Context, db *gorm.DB, codes []string) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.Card{}).
		Where("code IN ?", codes).
		Pluck("code", &out).Error
	return out, err
}

// ListUnusedCards returns unused cards, optionally scoped to a category,
// ordered by creation time descending. limit <= 0 disables pagination.
func ListUnusedCards(ctx context.Context, db *gorm.DB, categoryID string, offset, limit int) ([]domain.Card, error) {
	q := db.WithContext(ctx).Where("is_used = ?", false)
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	q = q.Order("created_at desc")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	var out []domain.Card
	err := q.Find(&out).Error
	return out, err
}

// CountUnusedCards returns the number of unused cards, optionally scoped
// to a category.
func CountUnusedCards(ctx context.Context, db *gorm.DB, categoryID string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.Card{}).Where("is_used = ?", false)
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// GetCard fetches a single card by id, or ErrNotFound if missing.
func GetCard(ctx context.Context, db *gorm.DB, id string) (*domain.Card, error) {
	var c domain.Card
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// isDuplicateErr detects unique-constraint violations across drivers that
// may not map to gorm.ErrDuplicatedKey.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite: "UNIQUE constraint failed" / "constraint failed: UNIQUE"
	// MySQL: "Duplicate entry"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "constraint failed") ||
		strings.Contains(msg, "duplicate entry")
}
