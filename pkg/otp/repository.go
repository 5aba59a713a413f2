package otp

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Challenge represents a one-time passcode bound to an email identifier.
// At most one live challenge exists per identifier at any time.
type Challenge struct {
	ID         uuid.UUID
	Identifier string
	Code       string
	ExpiresAt  time.Time
	Consumed   bool
	CreatedAt  time.Time
}

// OtpRepository defines the storage operations for OTP challenges.
//
// ConsumeChallenge is the single concurrency-critical operation: it must flip
// consumed to true with a conditional update (unconsumed, unexpired, exact
// identifier and code match) so that two concurrent calls with the same valid
// code produce exactly one winner.
type OtpRepository interface {
	// ReplaceChallenge persists a new challenge for its identifier,
	// superseding any existing challenge for the same identifier.
	ReplaceChallenge(ctx context.Context, challenge Challenge) error

	// ConsumeChallenge atomically marks the matching unconsumed, unexpired
	// challenge as consumed and returns it. Returns ErrChallengeNotFound
	// when no challenge matches.
	ConsumeChallenge(ctx context.Context, identifier, code string, now time.Time) (Challenge, error)

	// GetActiveChallenge returns the unconsumed, unexpired challenge for an
	// identifier, or ErrChallengeNotFound.
	GetActiveChallenge(ctx context.Context, identifier string, now time.Time) (Challenge, error)

	// DeleteExpired removes challenges whose expiry has passed and returns
	// the number removed. Expiry is enforced at read time regardless; this
	// only trims dead rows.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
