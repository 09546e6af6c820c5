// Package validate implements the pure field validators used by the
// conversation engine and the submission API. Each validator takes raw text
// and returns a normalized value or a named *Error; validators never mutate
// shared state and never fail for unrelated reasons.
package validate

import (
	"regexp"
	"strings"
)

// Error is a named validation failure. Code is stable and machine-readable;
// Field names the offending field.
type Error struct {
	Code  string
	Field string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Code + ": invalid " + e.Field }

// Named validation errors.
var (
	ErrInvalidMobile     = &Error{Code: "INVALID_MOBILE", Field: "mobile"}
	ErrInvalidOTPFormat  = &Error{Code: "INVALID_OTP_FORMAT", Field: "otp"}
	ErrInvalidDateFormat = &Error{Code: "INVALID_DATE_FORMAT", Field: "dob"}
	ErrInvalidChoice     = &Error{Code: "INVALID_CHOICE", Field: "choice"}
)

var (
	nonDigitRE = regexp.MustCompile(`\D`)
	mobileRE   = regexp.MustCompile(`^[6-9]\d{9}$`)
	otpRE      = regexp.MustCompile(`^\d{6}$`)
	dobRE      = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
)

// Mobile strips non-digit characters and validates an Indian mobile number:
// exactly 10 digits, first digit 6-9. Returns the cleaned digits.
func Mobile(raw string) (string, error) {
	clean := nonDigitRE.ReplaceAllString(raw, "")
	if !mobileRE.MatchString(clean) {
		return "", ErrInvalidMobile
	}
	return clean, nil
}

// OTP trims surrounding whitespace and validates a 6-digit ASCII code.
func OTP(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	if !otpRE.MatchString(clean) {
		return "", ErrInvalidOTPFormat
	}
	return clean, nil
}

// DOB validates the fixed-width DD/MM/YYYY shape. Calendar validity is not
// checked beyond the shape.
func DOB(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	if !dobRE.MatchString(clean) {
		return "", ErrInvalidDateFormat
	}
	return clean, nil
}
