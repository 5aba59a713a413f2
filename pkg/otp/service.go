package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/otp-auth/pkg/notification"
)

// OtpService owns the challenge lifecycle: issuing codes, delivering them by
// email, and verifying submissions with single-use and expiry enforcement.
type OtpService struct {
	repo       OtpRepository
	notifier   notification.Notifier
	codeExpiry time.Duration
	now        func() time.Time
}

// OtpServiceOption defines configuration options
type OtpServiceOption func(*OtpService)

// WithCodeExpiry sets the challenge expiration duration
func WithCodeExpiry(expiry time.Duration) OtpServiceOption {
	return func(s *OtpService) {
		s.codeExpiry = expiry
	}
}

// WithClock sets the time source, used by tests to control expiry
func WithClock(now func() time.Time) OtpServiceOption {
	return func(s *OtpService) {
		s.now = now
	}
}

// NewOtpService creates a new OTP service
func NewOtpService(repo OtpRepository, notifier notification.Notifier, opts ...OtpServiceOption) *OtpService {
	service := &OtpService{
		repo:       repo,
		notifier:   notifier,
		codeExpiry: 10 * time.Minute,
		now:        func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// generateCode draws a uniformly random 6-digit code in [100000, 999999]
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// NormalizeIdentifier canonicalizes an email identifier for storage and lookup
func NormalizeIdentifier(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Send issues a fresh challenge for the email, superseding any pending
// challenge for the same identifier, and delivers the code by email.
// Validation failures are reported before any store mutation. A delivery
// failure leaves the challenge persisted and returns ErrDeliveryFailed
// without retrying.
func (s *OtpService) Send(ctx context.Context, email string) (Challenge, error) {
	identifier := NormalizeIdentifier(email)
	if identifier == "" || !strings.Contains(identifier, "@") {
		return Challenge{}, ErrInvalidEmail
	}

	code, err := generateCode()
	if err != nil {
		return Challenge{}, err
	}

	now := s.now()
	challenge := Challenge{
		ID:         uuid.New(),
		Identifier: identifier,
		Code:       code,
		ExpiresAt:  now.Add(s.codeExpiry),
		Consumed:   false,
		CreatedAt:  now,
	}

	if err := s.repo.ReplaceChallenge(ctx, challenge); err != nil {
		slog.Error("Failed to persist OTP challenge", "identifier", identifier, "err", err)
		return Challenge{}, fmt.Errorf("failed to persist challenge: %w", err)
	}

	err = s.notifier.Send(notification.OTPCodeNotice, notification.NotificationData{
		To: identifier,
		Data: map[string]string{
			"Code":          code,
			"ExpiryMinutes": fmt.Sprintf("%.0f", s.codeExpiry.Minutes()),
		},
	})
	if err != nil {
		slog.Error("Failed to deliver OTP email", "identifier", identifier, "err", err)
		return Challenge{}, ErrDeliveryFailed
	}

	slog.Info("OTP challenge issued", "identifier", identifier, "challenge_id", challenge.ID, "expires_at", challenge.ExpiresAt)
	return challenge, nil
}

// Verify checks a submitted (email, code) pair and consumes the challenge.
// Consumption is persisted before the caller takes any further step, so a
// code can never be replayed even if downstream provisioning fails. Returns
// the normalized identifier for downstream use.
func (s *OtpService) Verify(ctx context.Context, email, code string) (string, error) {
	identifier := NormalizeIdentifier(email)
	if identifier == "" || code == "" {
		return "", ErrChallengeNotFound
	}

	challenge, err := s.repo.ConsumeChallenge(ctx, identifier, code, s.now())
	if err != nil {
		slog.Warn("OTP verification failed", "identifier", identifier, "err", err)
		return "", err
	}

	slog.Info("OTP verified", "identifier", identifier, "challenge_id", challenge.ID)
	return identifier, nil
}

// CleanupExpired removes challenges whose expiry has passed
func (s *OtpService) CleanupExpired(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		slog.Error("Failed to cleanup expired challenges", "err", err)
		return 0, fmt.Errorf("failed to cleanup expired challenges: %w", err)
	}
	return removed, nil
}
