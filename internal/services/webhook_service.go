// Package services – WebhookService
//
// This file implements webhook subscription management: registering a
// callback URL with an optional event filter and signing secret, listing
// a credential's subscriptions, and deleting one with ownership enforced.
// Actual event delivery lives in internal/notify.
package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cardvault/card-vault-backend/internal/domain"
	"github.com/cardvault/card-vault-backend/internal/repo"
)

// WebhookService implements the use-cases around webhook subscriptions.
// All operations are scoped to the owning credential; a foreign
// subscription id behaves exactly like a missing one.
type WebhookService struct {
	// DB is the database handle used for all subscription operations.
	DB *gorm.DB
}

// SubscriptionView is the API-facing shape of a subscription. The secret
// token is never echoed back.
type SubscriptionView struct {
	ID          string   `json:"id"`
	CallbackURL string   `json:"callback_url"`
	Events      []string `json:"events"`
	IsActive    bool     `json:"is_active"`
	CreatedAt   string   `json:"created_at"`
}

// Subscribe registers a callback URL for the credential. The URL must be
// absolute http(s); an empty event filter defaults to ["card.withdrawn"].
func (s *WebhookService) Subscribe(ctx context.Context, apiKeyID, callbackURL string, events []string, secretToken *string) (*SubscriptionView, error) {
	callbackURL = strings.TrimSpace(callbackURL)
	if callbackURL == "" {
		return nil, ErrInvalidCallbackURL
	}
	u, err := url.Parse(callbackURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidCallbackURL
	}

	if len(events) == 0 {
		events = []string{domain.EventCardWithdrawn}
	}
	if secretToken != nil && strings.TrimSpace(*secretToken) == "" {
		secretToken = nil
	}

	sub, err := repo.CreateSubscription(ctx, s.DB, apiKeyID, callbackURL, events, secretToken)
	if err != nil {
		return nil, err
	}
	return viewOf(sub), nil
}

// List returns all subscriptions owned by the credential, newest first.
func (s *WebhookService) List(ctx context.Context, apiKeyID string) ([]SubscriptionView, error) {
	subs, err := repo.ListSubscriptions(ctx, s.DB, apiKeyID)
	if err != nil {
		return nil, err
	}
	out := make([]SubscriptionView, 0, len(subs))
	for i := range subs {
		out = append(out, *viewOf(&subs[i]))
	}
	return out, nil
}

// Unsubscribe deletes a subscription iff it belongs to the credential.
// Missing and foreign ids both yield ErrSubscriptionNotFound.
func (s *WebhookService) Unsubscribe(ctx context.Context, apiKeyID, subscriptionID string) error {
	err := repo.DeleteSubscription(ctx, s.DB, subscriptionID, apiKeyID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSubscriptionNotFound
	}
	return err
}

func viewOf(sub *domain.WebhookSubscription) *SubscriptionView {
	events := repo.SubscriptionEvents(sub)
	if events == nil {
		events = []string{}
	}
	return &SubscriptionView{
		ID:          sub.ID,
		CallbackURL: sub.CallbackURL,
		Events:      events,
		IsActive:    sub.IsActive,
		CreatedAt:   sub.CreatedAt.UTC().Format(time.RFC3339),
	}
}
