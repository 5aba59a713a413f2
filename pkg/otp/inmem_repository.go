package otp

import (
	"context"
	"sync"
	"time"
)

// InMemoryOtpRepository implements OtpRepository using in-memory storage
type InMemoryOtpRepository struct {
	mu         sync.Mutex
	challenges map[string]Challenge // identifier -> challenge
}

// NewInMemoryOtpRepository creates a new in-memory OTP repository
func NewInMemoryOtpRepository() *InMemoryOtpRepository {
	return &InMemoryOtpRepository{
		challenges: make(map[string]Challenge),
	}
}

// ReplaceChallenge supersedes any existing challenge for the identifier
func (r *InMemoryOtpRepository) ReplaceChallenge(ctx context.Context, challenge Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.challenges[challenge.Identifier] = challenge
	return nil
}

// ConsumeChallenge marks the matching challenge as consumed under the lock,
// so at most one caller wins for a given code.
func (r *InMemoryOtpRepository) ConsumeChallenge(ctx context.Context, identifier, code string, now time.Time) (Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	challenge, ok := r.challenges[identifier]
	if !ok || challenge.Consumed || challenge.Code != code || !challenge.ExpiresAt.After(now) {
		return Challenge{}, ErrChallengeNotFound
	}

	challenge.Consumed = true
	r.challenges[identifier] = challenge
	return challenge, nil
}

// GetActiveChallenge returns the live challenge for an identifier
func (r *InMemoryOtpRepository) GetActiveChallenge(ctx context.Context, identifier string, now time.Time) (Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	challenge, ok := r.challenges[identifier]
	if !ok || challenge.Consumed || !challenge.ExpiresAt.After(now) {
		return Challenge{}, ErrChallengeNotFound
	}
	return challenge, nil
}

// DeleteExpired removes challenges past their expiry
func (r *InMemoryOtpRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for identifier, challenge := range r.challenges {
		if !challenge.ExpiresAt.After(now) {
			delete(r.challenges, identifier)
			removed++
		}
	}
	return removed, nil
}
