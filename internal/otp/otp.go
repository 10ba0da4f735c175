// Package otp stores and verifies one-time SMS codes. Verification is
// attempt-limited: every failed attempt decrements a counter exactly once,
// under concurrency, until the code is exhausted.
package otp

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound covers unknown and expired authentication ids; callers
	// cannot distinguish the two.
	ErrNotFound = errors.New("otp: verification not found or expired")
	// ErrInvalidCode is a failed attempt with attempts remaining.
	ErrInvalidCode = errors.New("otp: invalid code")
	// ErrTooManyAttempts means the attempts budget is spent.
	ErrTooManyAttempts = errors.New("otp: too many attempts")
)

// Store persists pending verifications keyed by authentication id.
type Store interface {
	// Create stores a fresh code with the full attempts budget and the given
	// lifetime, returning the authentication id handed back to the caller.
	Create(ctx context.Context, code string, maxAttempts int, ttl time.Duration) (string, error)
	// Verify checks code against the stored one. A match consumes the
	// verification; a mismatch consumes one attempt.
	Verify(ctx context.Context, authenticationID, code string) error
}

var codeEncoding = base32.HexEncoding.WithPadding(base32.NoPadding)

// GenerateCode produces a random base32hex code of the given length, sized
// for humans to copy from an SMS.
func GenerateCode(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return codeEncoding.EncodeToString(buf)[:size], nil
}
