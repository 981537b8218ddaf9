// Package services – CardService
//
// This file implements the management-side card operations consumed by
// operator tooling: generating batches of redemption codes, bulk-writing
// them, checking for existing codes, listing unused inventory, category
// listing, aggregate stats, and the announcement setting. None of these
// paths touch the allocation engine's locking discipline.
package services

import (
	"context"
	"math/rand"
	"strings"

	"gorm.io/gorm"

	"github.com/cardvault/card-vault-backend/internal/domain"
	"github.com/cardvault/card-vault-backend/internal/repo"
)

// codeAlphabet is the character set for generated codes (a-z, 0-9).
const codeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// randomCodeLen is the length of the random part of a generated code.
const randomCodeLen = 32

// Batch limits shared by generation and bulk write.
const (
	maxBatchSize = 1000
	maxPrefixLen = 50
	maxCodeLen   = 255
)

// CardService implements inventory management use-cases around cards,
// categories, stats, and settings.
type CardService struct {
	// DB is the database handle used for all card operations.
	DB *gorm.DB
}

// GenerateCodes produces count random codes of the form
// <prefix><32 chars of [a-z0-9]>, unique within the batch. The codes are
// not persisted; WriteCodes stores them.
func (s *CardService) GenerateCodes(count int, prefix string) ([]string, error) {
	if count < 1 || count > maxBatchSize {
		return nil, ErrInvalidGenerateCount
	}
	if len(prefix) > maxPrefixLen {
		return nil, ErrInvalidPrefix
	}

	codes := make([]string, 0, count)
	seen := make(map[string]struct{}, count)
	var b strings.Builder
	for len(codes) < count {
		b.Reset()
		b.WriteString(prefix)
		for i := 0; i < randomCodeLen; i++ {
			b.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
		}
		code := b.String()
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}

// WriteResult reports the outcome of a bulk card write.
type WriteResult struct {
	TotalCount     int `json:"total_count"`
	InsertedCount  int `json:"inserted_count"`
	DuplicateCount int `json:"duplicate_count"`
}

// WriteCodes bulk-inserts codes as unused cards, optionally assigned to a
// category. Codes already present are counted as duplicates rather than
// failing the batch.
func (s *CardService) WriteCodes(ctx context.Context, codes []string, categoryID *string) (*WriteResult, error) {
	if len(codes) == 0 || len(codes) > maxBatchSize {
		return nil, ErrInvalidCodes
	}
	for _, code := range codes {
		if code == "" || len(code) > maxCodeLen {
			return nil, ErrInvalidCodes
		}
	}

	inserted, duplicates, err := repo.CreateCards(ctx, s.DB, codes, categoryID)
	if err != nil {
		return nil, err
	}
	return &WriteResult{
		TotalCount:     len(codes),
		InsertedCount:  inserted,
		DuplicateCount: duplicates,
	}, nil
}

// CheckCodes returns the subset of codes that already exist.
func (s *CardService) CheckCodes(ctx context.Context, codes []string) ([]string, error) {
	if len(codes) == 0 || len(codes) > maxBatchSize {
		return nil, ErrInvalidCodes
	}
	existing, err := repo.ExistingCodes(ctx, s.DB, codes)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		existing = []string{}
	}
	return existing, nil
}

// ListUnused returns unused cards (optionally category-scoped) plus the
// total for pagination. limit <= 0 returns everything.
func (s *CardService) ListUnused(ctx context.Context, categoryID string, page, limit int) ([]domain.Card, int64, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	cards, err := repo.ListUnusedCards(ctx, s.DB, categoryID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := repo.CountUnusedCards(ctx, s.DB, categoryID)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// Categories returns all categories ordered by creation time.
func (s *CardService) Categories(ctx context.Context) ([]domain.Category, error) {
	return repo.ListCategories(ctx, s.DB)
}

// Stats returns inventory-wide card counts plus per-category breakdown.
func (s *CardService) Stats(ctx context.Context) (*repo.CardStats, error) {
	return repo.CardStatsSummary(ctx, s.DB)
}

// Settings returns the singleton settings row.
func (s *CardService) Settings(ctx context.Context) (*domain.Setting, error) {
	return repo.GetSettings(ctx, s.DB)
}

// UpdateAnnouncement upserts the announcement text.
func (s *CardService) UpdateAnnouncement(ctx context.Context, announcement *string) (*domain.Setting, error) {
	return repo.UpdateSettings(ctx, s.DB, announcement)
}
