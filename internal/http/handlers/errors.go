// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These symbolic constants give clients a stable, machine-readable error
// taxonomy that supplements human-readable messages. Generic codes mirror
// common HTTP status semantics; domain-specific codes cover business failures
// that a status alone cannot convey.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeSubmitFailed     = "submit_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeOTPInvalid       = "otp_invalid"
	ErrCodeOTPExpired       = "otp_expired"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
