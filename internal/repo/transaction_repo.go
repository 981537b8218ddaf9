// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Transaction model recording withdrawal outcomes.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardvault/card-vault-backend/internal/domain"
)

// CreateCompletedTransaction inserts a terminal, completed transaction row
// referencing the credential, category, and card of a withdrawal. It is
// intended to run on a transaction-bound handle so the insert commits (or
// rolls back) together with the card update.
func CreateCompletedTransaction(ctx context.Context, tx *gorm.DB, apiKeyID, categoryID, cardID string) (*domain.Transaction, error) {
	now := time.Now().UTC()
	t := &domain.Transaction{
		ID:          uuid.NewString(),
		APIKeyID:    &apiKeyID,
		CategoryID:  &categoryID,
		CardID:      &cardID,
		Status:      domain.TxStatusCompleted,
		CreatedAt:   now,
		CompletedAt: &now,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// GetTransaction fetches a transaction by id, or ErrNotFound if missing.
func GetTransaction(ctx context.Context, db *gorm.DB, id string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}
