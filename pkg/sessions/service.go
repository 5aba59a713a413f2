package sessions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service provides session management business logic
type Service struct {
	repo   Repository
	expiry time.Duration
	now    func() time.Time
}

// ServiceOption defines configuration options
type ServiceOption func(*Service)

// WithSessionExpiry sets the session expiration duration
func WithSessionExpiry(expiry time.Duration) ServiceOption {
	return func(s *Service) {
		s.expiry = expiry
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new session service
func NewService(repo Repository, opts ...ServiceOption) *Service {
	service := &Service{
		repo:   repo,
		expiry: 30 * 24 * time.Hour,
		now:    func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// IssueSession deletes every existing session for the user and mints exactly
// one new session with a fresh unguessable token. Immediately after a
// successful login the user therefore holds exactly one valid session. A
// failed insert after the delete is surfaced as an error, never swallowed;
// the brief logged-out window between the two steps is accepted.
func (s *Service) IssueSession(ctx context.Context, userID uuid.UUID, meta Metadata) (Session, error) {
	deleted, err := s.repo.DeleteByUserID(ctx, userID)
	if err != nil {
		slog.Error("Failed to delete prior sessions", "user_id", userID, "err", err)
		return Session{}, fmt.Errorf("failed to delete prior sessions: %w", err)
	}
	if deleted > 0 {
		slog.Info("Superseded prior sessions", "user_id", userID, "count", deleted)
	}

	now := s.now()
	session := Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(s.expiry),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		slog.Error("Failed to create session", "user_id", userID, "err", err)
		return Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("Session issued", "user_id", userID, "session_id", session.ID, "expires_at", session.ExpiresAt)
	return session, nil
}

// ValidateToken resolves a token to its session, rejecting expired sessions.
// Expiry is absolute; there is no passive renewal.
func (s *Service) ValidateToken(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrSessionNotFound
	}

	session, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return Session{}, err
	}

	if !session.ExpiresAt.After(s.now()) {
		return Session{}, ErrSessionNotFound
	}

	return session, nil
}

// RevokeToken deletes the session holding the token. Revoking an unknown
// token is not an error.
func (s *Service) RevokeToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.DeleteByToken(ctx, token); err != nil {
		slog.Error("Failed to revoke session", "err", err)
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// CleanupExpired removes sessions past their expiry
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		slog.Error("Failed to cleanup expired sessions", "err", err)
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}
	return removed, nil
}
