// Package fiscal provides FiscalValidator implementations: an in-process
// simulation of the tax authority, a circuit breaker around any validator
// and a go-plugin transport to run a validator out of process.
package fiscal

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

// TokenPrefix starts every simulated authorisation code.
const TokenPrefix = "CAE-"

const (
	tokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	tokenLength   = 9
	// Bytes at or above this are discarded so every character is equally likely.
	tokenByteLimit = 256 - 256%len(tokenAlphabet)
)

// SimulatedValidator approves every request after a fixed delay.
type SimulatedValidator struct {
	delay time.Duration
}

var _ domain.FiscalValidator = (*SimulatedValidator)(nil)

// NewSimulatedValidator creates a validator that answers after delay.
func NewSimulatedValidator(delay time.Duration) *SimulatedValidator {
	return &SimulatedValidator{delay: delay}
}

// Validate waits for the configured delay and returns a fresh token.
func (v *SimulatedValidator) Validate(ctx context.Context, _ domain.FiscalRequest) (domain.FiscalToken, error) {
	if v.delay > 0 {
		timer := time.NewTimer(v.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return NewToken()
}

// NewToken returns TokenPrefix followed by nine random characters from
// [0-9A-Z].
func NewToken() (domain.FiscalToken, error) {
	return newTokenFrom(rand.Reader)
}

func newTokenFrom(r io.Reader) (domain.FiscalToken, error) {
	out := make([]byte, 0, tokenLength)
	buf := make([]byte, 2*tokenLength)
	for len(out) < tokenLength {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("generate fiscal token: %w", err)
		}
		for _, b := range buf {
			if int(b) >= tokenByteLimit {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == tokenLength {
				break
			}
		}
	}
	return domain.FiscalToken(TokenPrefix + string(out)), nil
}
