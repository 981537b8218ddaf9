// Webhook subscription HTTP handlers.
//
// This file exposes REST endpoints for webhook subscription management:
//   - POST   /webhooks       (subscribe a callback URL)
//   - GET    /webhooks       (list own subscriptions)
//   - DELETE /webhooks/{id}  (unsubscribe)
//
// Subscriptions are scoped to the authenticated credential: a key can only
// see and delete its own registrations. Secret tokens are accepted on
// create and never echoed back.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cardvault/card-vault-backend/internal/services"
)

// WebhookService defines subscription management operations consumed by
// HTTP handlers.
type WebhookService interface {
	Subscribe(ctx context.Context, apiKeyID, callbackURL string, events []string, secretToken *string) (*services.SubscriptionView, error)
	List(ctx context.Context, apiKeyID string) ([]services.SubscriptionView, error)
	Unsubscribe(ctx context.Context, apiKeyID, subscriptionID string) error
}

// WebhookHandlers groups the webhook subscription endpoints.
type WebhookHandlers struct {
	svc WebhookService
}

// NewWebhookHandlers constructs a WebhookHandlers bound to the service.
func NewWebhookHandlers(svc WebhookService) *WebhookHandlers {
	return &WebhookHandlers{svc: svc}
}

// SubscribeRequest is the JSON payload for registering a callback.
type SubscribeRequest struct {
	// CallbackURL receives signed event notifications. Must be absolute http(s).
	CallbackURL string `json:"callback_url" binding:"required" example:"https://shop.example.com/hooks/cards"`
	// Events filters delivered event types; defaults to ["card.withdrawn"].
	Events []string `json:"events" example:"card.withdrawn"`
	// SecretToken, when set, enables HMAC-SHA256 signing of deliveries.
	SecretToken *string `json:"secret_token,omitempty"`
}

// Subscribe godoc
// @ID          subscribeWebhook
// @Summary     Register a webhook subscription
// @Description Registers a callback URL for the authenticated credential. Deliveries are signed with the secret token when one is provided.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       body  body  handlers.SubscribeRequest  true  "Subscription payload"
//
// @Success     201  {object}  services.SubscriptionView
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid callback URL"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /webhooks [post]
func (h *WebhookHandlers) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "callback_url is required")
		return
	}

	sub, err := h.svc.Subscribe(c.Request.Context(), credentialID(c), strings.TrimSpace(req.CallbackURL), req.Events, req.SecretToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCallbackURL) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "callback_url must be an absolute http(s) URL")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "subscription failed")
		return
	}
	ok(c, http.StatusCreated, sub)
}

// ListSubscriptions godoc
// @ID          listWebhooks
// @Summary     List own webhook subscriptions
// @Tags        Webhooks
// @Produce     json
// @Security    ApiKeyAuth
//
// @Success     200  {array}   services.SubscriptionView
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /webhooks [get]
func (h *WebhookHandlers) ListSubscriptions(c *gin.Context) {
	subs, err := h.svc.List(c.Request.Context(), credentialID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "subscription listing failed")
		return
	}
	ok(c, http.StatusOK, subs)
}

// Unsubscribe godoc
// @ID          unsubscribeWebhook
// @Summary     Delete a webhook subscription
// @Description Deletes a subscription owned by the authenticated credential.
// @Tags        Webhooks
// @Produce     json
// @Security    ApiKeyAuth
//
// @Param       id  path  string  true  "Subscription ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid parameter"
// @Failure     404  {object}  handlers.ErrorResponse  "Subscription not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /webhooks/{id} [delete]
func (h *WebhookHandlers) Unsubscribe(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidParameter, "subscription id must be a UUID")
		return
	}

	if err := h.svc.Unsubscribe(c.Request.Context(), credentialID(c), id); err != nil {
		if errors.Is(err, services.ErrSubscriptionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "subscription not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "unsubscribe failed")
		return
	}
	noContent(c)
}
