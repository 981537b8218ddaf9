// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides access to the singleton settings row.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cardvault/card-vault-backend/internal/domain"
)

// settingsRowID is the primary key of the singleton settings row.
const settingsRowID = "main"

// GetSettings returns the settings row, creating an empty one on first
// access so callers never see ErrNotFound.
func GetSettings(ctx context.Context, db *gorm.DB) (*domain.Setting, error) {
	var s domain.Setting
	err := db.WithContext(ctx).Where("id = ?", settingsRowID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = domain.Setting{ID: settingsRowID, UpdatedAt: time.Now().UTC()}
		if err := db.WithContext(ctx).Create(&s).Error; err != nil {
			return nil, err
		}
		return &s, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSettings upserts the announcement text on the singleton row.
func UpdateSettings(ctx context.Context, db *gorm.DB, announcement *string) (*domain.Setting, error) {
	s := &domain.Setting{
		ID:           settingsRowID,
		Announcement: announcement,
		UpdatedAt:    time.Now().UTC(),
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"announcement", "updated_at"}),
		}).
		Create(s).Error
	if err != nil {
		return nil, err
	}
	return s, nil
}
