// Package otp implements one-time-password issue and verification for the
// web-form submission flow. Codes are 6 ASCII digits, kept in memory with a
// validity window; verification failures are tagged domain-verification
// errors so the classifier can pick the right user message.
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/instagov/birthbot/internal/boterr"
)

type entry struct {
	code     string
	issuedAt time.Time
}

// Service issues and verifies OTP codes. Safe for concurrent use.
type Service struct {
	ttl time.Duration

	mu    sync.Mutex
	codes map[string]entry // mobile → pending code

	// Test seams.
	now func() time.Time
	gen func() (string, error)
}

// NewService constructs a Service with the given code validity window.
func NewService(ttl time.Duration) *Service {
	return &Service{
		ttl:   ttl,
		codes: make(map[string]entry),
		now:   time.Now,
		gen:   randomCode,
	}
}

// Issue generates and stores a fresh code for the mobile number, replacing
// any pending one. The code is returned so the caller can dispatch it.
func (s *Service) Issue(mobile string) (string, error) {
	code, err := s.gen()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	s.mu.Lock()
	s.codes[mobile] = entry{code: code, issuedAt: s.now()}
	s.mu.Unlock()
	return code, nil
}

// Verify checks code against the pending entry for the mobile number.
// Failures carry a domain-verification reason: "not_found", "expired", or
// "mismatch". A successful verification consumes the code.
func (s *Service) Verify(mobile, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.codes[mobile]
	if !ok {
		return boterr.DomainVerification("not_found", errors.New("no pending otp"))
	}
	if s.now().Sub(e.issuedAt) > s.ttl {
		delete(s.codes, mobile)
		return boterr.DomainVerification("expired", errors.New("otp expired"))
	}
	if e.code != code {
		return boterr.DomainVerification("mismatch", errors.New("otp mismatch"))
	}
	delete(s.codes, mobile)
	return nil
}

// randomCode returns 6 cryptographically random ASCII digits.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
