// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries
// used by the stats endpoint. Each function is context-aware and safe to
// call from services or handlers.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/cardvault/card-vault-backend/internal/domain"
)

// CategoryCount pairs a category with the number of cards it holds.
type CategoryCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int64  `json:"count"`
}

// CardStats aggregates inventory-wide card counts.
type CardStats struct {
	Total              int64           `json:"total"`
	UsedCount          int64           `json:"used_count"`
	UnusedCount        int64           `json:"unused_count"`
	UncategorizedCount int64           `json:"uncategorized_count"`
	CategoryStats      []CategoryCount `json:"category_stats"`
}

// CardStatsSummary computes total/used/unused/uncategorized card counts
// plus a per-category breakdown (categories with zero cards included).
func CardStatsSummary(ctx context.Context, db *gorm.DB) (*CardStats, error) {
	var stats CardStats
	cards := db.WithContext(ctx).Model(&domain.Card{})

	if err := cards.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := cards.Session(&gorm.Session{}).Where("is_used = ?", true).Count(&stats.UsedCount).Error; err != nil {
		return nil, err
	}
	stats.UnusedCount = stats.Total - stats.UsedCount
	if err := cards.Session(&gorm.Session{}).Where("category_id IS NULL").Count(&stats.UncategorizedCount).Error; err != nil {
		return nil, err
	}

	err := db.WithContext(ctx).
		Model(&domain.Category{}).
		Select("categories.id, categories.name, categories.color, COUNT(cards.id) AS count").
		Joins("LEFT JOIN cards ON cards.category_id = categories.id").
		Group("categories.id, categories.name, categories.color").
		Order("categories.created_at").
		Scan(&stats.CategoryStats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
