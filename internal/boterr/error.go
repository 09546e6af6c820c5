// Package boterr defines the single tagged error value used for every
// classified failure in the bot, replacing a per-type error hierarchy.
// Callers dispatch on the Kind discriminant (and, for delivery failures,
// the origin status) rather than on nominal subtypes.
package boterr

import (
	"errors"
	"fmt"
)

// Kind discriminates classified failures.
type Kind string

const (
	// KindValidation: user input malformed; resolved locally by re-prompting.
	KindValidation Kind = "validation"
	// KindRateLimited: gateway responded with a rate-limit status.
	KindRateLimited Kind = "rate_limited"
	// KindServerError: gateway responded with a 5xx class status.
	KindServerError Kind = "server_error"
	// KindAuth: gateway rejected credentials or permissions; never retried.
	KindAuth Kind = "auth"
	// KindDeliveryOther: any other non-success gateway status.
	KindDeliveryOther Kind = "delivery_other"
	// KindNetwork: transport-level failure with no gateway response.
	KindNetwork Kind = "network"
	// KindDomainVerification: OTP mismatch, expiry, or similar domain check.
	KindDomainVerification Kind = "domain_verification"
	// KindConfiguration: missing credentials; fatal at startup.
	KindConfiguration Kind = "configuration"
)

// Severity orders operator attention. Critical classifications additionally
// trigger the operator alert channel.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error is the tagged failure value. Severity and Retryable are derived from
// Kind at construction so every Error is internally consistent.
type Error struct {
	Kind         Kind
	Severity     Severity
	OriginStatus int    // gateway HTTP status, when one exists
	Field        string // offending field for validation failures
	Reason       string // sub-reason for domain verification (mismatch|expired|not_found)
	Retryable    bool
	err          error // wrapped cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.OriginStatus != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.OriginStatus)
	}
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.err != nil {
		msg += ": " + e.err.Error()
	}
	return msg
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// severityFor applies the classification priority order: server-error class
// is critical, authentication high, domain verification medium, everything
// else low.
func severityFor(k Kind) Severity {
	switch k {
	case KindServerError:
		return SeverityCritical
	case KindAuth:
		return SeverityHigh
	case KindDomainVerification:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// retryableFor marks transport failures (5xx and network) as retry
// candidates. Authentication and validation failures are never retried.
func retryableFor(k Kind) bool {
	return k == KindServerError || k == KindNetwork || k == KindRateLimited
}

func newError(k Kind, cause error) *Error {
	return &Error{
		Kind:      k,
		Severity:  severityFor(k),
		Retryable: retryableFor(k),
		err:       cause,
	}
}

// Delivery classifies a gateway response status into a tagged error.
func Delivery(status int, cause error) *Error {
	var k Kind
	switch {
	case status == 429:
		k = KindRateLimited
	case status == 401 || status == 403:
		k = KindAuth
	case status >= 500:
		k = KindServerError
	default:
		k = KindDeliveryOther
	}
	e := newError(k, cause)
	e.OriginStatus = status
	return e
}

// Network tags a transport failure that produced no gateway response.
func Network(cause error) *Error { return newError(KindNetwork, cause) }

// Validation tags a malformed-input failure for the named field.
func Validation(field string, cause error) *Error {
	e := newError(KindValidation, cause)
	e.Field = field
	return e
}

// DomainVerification tags an OTP or similar domain check failure.
// Reason is one of "mismatch", "expired", "not_found".
func DomainVerification(reason string, cause error) *Error {
	e := newError(KindDomainVerification, cause)
	e.Reason = reason
	return e
}

// Configuration tags a missing-credential failure. Fatal at startup.
func Configuration(cause error) *Error { return newError(KindConfiguration, cause) }

// KindOf extracts the Kind of err, or empty when err is not a tagged error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
