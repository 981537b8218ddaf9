// Package services defines the business logic for card withdrawal, status
// resolution, webhook subscriptions, and credential issuance. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import "errors"

// Withdrawal-related errors.
var (
	// ErrInvalidCategory is returned when a withdrawal request carries an
	// empty or malformed category identifier.
	ErrInvalidCategory = errors.New("category id is required")

	// ErrCategoryNotFound indicates that the requested category does not
	// exist. The allocation engine treats this as a hard failure.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrNoAvailableCards is returned when the category holds no unused
	// cards. This is category-scoped exhaustion, distinct from a generic
	// not-found condition.
	ErrNoAvailableCards = errors.New("no available cards in category")
)

// Status-resolution errors.
var (
	// ErrTransactionNotFound indicates that the requested transaction
	// does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Webhook subscription errors.
var (
	// ErrInvalidCallbackURL is returned when a subscription request
	// carries a missing or unparseable callback URL.
	ErrInvalidCallbackURL = errors.New("callback url is invalid")

	// ErrSubscriptionNotFound indicates that the subscription does not
	// exist or is not owned by the calling credential.
	ErrSubscriptionNotFound = errors.New("webhook subscription not found")
)

// Card generation errors.
var (
	// ErrInvalidGenerateCount is returned when the requested batch size
	// is outside [1, 1000].
	ErrInvalidGenerateCount = errors.New("count must be between 1 and 1000")

	// ErrInvalidPrefix is returned when the code prefix exceeds 50 chars.
	ErrInvalidPrefix = errors.New("prefix must be at most 50 characters")

	// ErrInvalidCodes is returned when a bulk write contains an empty or
	// oversized code, or the batch itself is empty or above 1000 entries.
	ErrInvalidCodes = errors.New("codes must be 1-255 characters, at most 1000 per batch")
)

// Credential errors.
var (
	// ErrInvalidKeyName is returned when an API key is created without a name.
	ErrInvalidKeyName = errors.New("api key name is required")
)
