// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for webhook
// subscriptions and delivery records.
//
// Functions:
//
//   - CreateSubscription(ctx, db, apiKeyID, callbackURL, events, secret)
//     Inserts an active subscription owned by the credential.
//
//   - ListSubscriptions(ctx, db, apiKeyID) / ListActiveSubscriptions(...)
//     Return subscriptions owned by a credential, newest first.
//
//   - GetOwnedSubscription(ctx, db, id, apiKeyID)
//     Fetches a subscription enforcing ownership; ErrNotFound otherwise.
//
//   - DeleteSubscription(ctx, db, id, apiKeyID)
//     Deletes iff owned; ErrNotFound when missing or foreign.
//
//   - CreateDelivery / MarkDeliverySuccess / MarkDeliveryFailed
//     Bookkeeping for individual dispatch attempts.
package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardvault/card-vault-backend/internal/domain"
)

// maxDeliveryBodyLen caps the stored response body of a delivery attempt.
const maxDeliveryBodyLen = 1000

// CreateSubscription inserts an active webhook subscription. events is
// stored JSON-encoded; an empty slice is persisted as "[]".
func CreateSubscription(ctx context.Context, db *gorm.DB, apiKeyID, callbackURL string, events []string, secretToken *string) (*domain.WebhookSubscription, error) {
	raw, err := json.Marshal(events)
	if err != nil {
		return nil, err
	}
	sub := &domain.WebhookSubscription{
		ID:          uuid.NewString(),
		APIKeyID:    apiKeyID,
		CallbackURL: callbackURL,
		Events:      string(raw),
		SecretToken: secretToken,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// ListSubscriptions returns all subscriptions owned by apiKeyID, newest
// first.
func ListSubscriptions(ctx context.Context, db *gorm.DB, apiKeyID string) ([]domain.WebhookSubscription, error) {
	var out []domain.WebhookSubscription
	err := db.WithContext(ctx).
		Where("api_key_id = ?", apiKeyID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListActiveSubscriptions returns the active subscriptions owned by
// apiKeyID. The notification dispatcher fans out over this set.
func ListActiveSubscriptions(ctx context.Context, db *gorm.DB, apiKeyID string) ([]domain.WebhookSubscription, error) {
	var out []domain.WebhookSubscription
	err := db.WithContext(ctx).
		Where("api_key_id = ? AND is_active = ?", apiKeyID, true).
		Find(&out).Error
	return out, err
}

// GetOwnedSubscription fetches a subscription by id enforcing ownership.
// Missing or foreign rows both yield ErrNotFound so callers cannot probe
// other credentials' subscriptions.
func GetOwnedSubscription(ctx context.Context, db *gorm.DB, id, apiKeyID string) (*domain.WebhookSubscription, error) {
	var sub domain.WebhookSubscription
	err := db.WithContext(ctx).
		Where("id = ? AND api_key_id = ?", id, apiKeyID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeleteSubscription removes a subscription iff owned by apiKeyID.
// Returns ErrNotFound when no row was deleted.
func DeleteSubscription(ctx context.Context, db *gorm.DB, id, apiKeyID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND api_key_id = ?", id, apiKeyID).
		Delete(&domain.WebhookSubscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateDelivery inserts a pending delivery row for one dispatch attempt.
func CreateDelivery(ctx context.Context, db *gorm.DB, subscriptionID, transactionID string) (*domain.WebhookDelivery, error) {
	d := &domain.WebhookDelivery{
		ID:             uuid.NewString(),
		SubscriptionID: subscriptionID,
		TransactionID:  &transactionID,
		Status:         domain.DeliveryStatusPending,
		Attempts:       0,
		CreatedAt:      time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// MarkDeliverySuccess records a successful dispatch: status, response
// code, truncated body, and delivery timestamp.
func MarkDeliverySuccess(ctx context.Context, db *gorm.DB, id string, responseCode int, responseBody string) error {
	body := truncateBody(responseBody)
	now := time.Now().UTC()
	return db.WithContext(ctx).
		Model(&domain.WebhookDelivery{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        domain.DeliveryStatusSuccess,
			"response_code": responseCode,
			"response_body": body,
			"attempts":      gorm.Expr("attempts + 1"),
			"delivered_at":  now,
		}).Error
}

// MarkDeliveryFailed records a failed dispatch attempt. responseCode may
// be nil for transport-level failures (timeout, refused connection).
func MarkDeliveryFailed(ctx context.Context, db *gorm.DB, id string, responseCode *int, responseBody string) error {
	updates := map[string]any{
		"status":   domain.DeliveryStatusFailed,
		"attempts": gorm.Expr("attempts + 1"),
	}
	if responseCode != nil {
		updates["response_code"] = *responseCode
		updates["response_body"] = truncateBody(responseBody)
	}
	return db.WithContext(ctx).
		Model(&domain.WebhookDelivery{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// GetDelivery fetches a delivery row by id, or ErrNotFound if missing.
func GetDelivery(ctx context.Context, db *gorm.DB, id string) (*domain.WebhookDelivery, error) {
	var d domain.WebhookDelivery
	if err := db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// SubscriptionEvents decodes the JSON event filter of a subscription.
// A corrupt or empty filter decodes to nil.
func SubscriptionEvents(sub *domain.WebhookSubscription) []string {
	var events []string
	if err := json.Unmarshal([]byte(sub.Events), &events); err != nil {
		return nil
	}
	return events
}

// truncateBody limits a response body to maxDeliveryBodyLen characters.
func truncateBody(s string) string {
	if len(s) > maxDeliveryBodyLen {
		return s[:maxDeliveryBodyLen]
	}
	return s
}
