// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package). These codes provide clients with a stable,
// machine-readable error taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Generic codes (e.g., invalid_parameter, unauthorized) mirror common HTTP
//     status semantics to aid interoperability.
//   - Domain-specific codes (e.g., no_available_cards, circuit_breaker_open) are
//     reserved for business outcomes that cannot be conveyed by status alone.
//   - All error responses must include both an HTTP status and one of these codes.
//
// Usage:
//   - Handlers select the most specific matching code and pass it to `fail()` along
//     with the corresponding HTTP status and message.
//   - Clients are expected to branch on these codes for programmatic error handling.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "no_available_cards",
//	  "message": "no unused cards remain in this category"
//	}
package handlers

const (
	ErrCodeInvalidParameter = "invalid_parameter"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeNoAvailableCards   = "no_available_cards"
	ErrCodeRateLimitExceeded  = "rate_limit_exceeded"
	ErrCodeCircuitBreakerOpen = "circuit_breaker_open"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
)
