// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Category
// model.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/cardvault/card-vault-backend/internal/domain"
)

// GetCategory fetches a category by id, or ErrNotFound if missing.
func GetCategory(ctx context.Context, db *gorm.DB, id string) (*domain.Category, error) {
	var cat domain.Category
	if err := db.WithContext(ctx).Where("id = ?", id).First(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// ListCategories returns all categories ordered by creation time ascending.
func ListCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	var out []domain.Category
	err := db.WithContext(ctx).Order("created_at").Find(&out).Error
	return out, err
}
