// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These symbolic constants are mapped to HTTP responses via the `fail()`
// helper in this package and give clients a stable, machine-readable error
// taxonomy alongside human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case.
//   - Generic codes (bad_request, unauthorized, not_found, conflict) mirror
//     common HTTP status semantics.
//   - Domain-specific codes name the business rule that rejected the request
//     (invalid_transition, unknown_preset) so clients can branch on them.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "invalid_transition",
//	  "message": "visibility transition not allowed"
//	}
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeValidation        = "validation_failed"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeUnknownPreset     = "unknown_preset"
	ErrCodeMethodNotAllowed  = "method_not_allowed"
)
