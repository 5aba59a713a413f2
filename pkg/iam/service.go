package iam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultRole is assigned to users provisioned by the authentication flow.
// The flow itself never sets any other role.
const DefaultRole = "user"

// IamService provisions User records for verified email identities
type IamService struct {
	repo UserRepository
	now  func() time.Time
}

// IamServiceOption defines configuration options
type IamServiceOption func(*IamService)

// WithClock sets the time source
func WithClock(now func() time.Time) IamServiceOption {
	return func(s *IamService) {
		s.now = now
	}
}

// NewIamService creates a new IAM service
func NewIamService(repo UserRepository, opts ...IamServiceOption) *IamService {
	service := &IamService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// ResolveUserByEmail maps a verified email to its User record, creating one on
// first sight. A freshly created user gets a name defaulted from the email
// local part, email_verified true and the default role. An existing unverified
// user is marked verified; an already-verified user is returned untouched.
//
// The operation is idempotent under concurrent duplicate calls: when two
// callers race on a never-seen email, the store's uniqueness constraint picks
// a winner and the loser reads back the winner's row.
func (s *IamService) ResolveUserByEmail(ctx context.Context, email string) (User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		if !user.EmailVerified {
			now := s.now()
			if err := s.repo.MarkEmailVerified(ctx, user.ID, now); err != nil {
				slog.Error("Failed to mark email verified", "user_id", user.ID, "err", err)
				return User{}, fmt.Errorf("failed to mark email verified: %w", err)
			}
			user.EmailVerified = true
			user.UpdatedAt = now
		}
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		slog.Error("Failed to look up user", "email", email, "err", err)
		return User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	now := s.now()
	created, err := s.repo.CreateUser(ctx, User{
		ID:            uuid.New(),
		Email:         email,
		Name:          localPart(email),
		EmailVerified: true,
		Role:          DefaultRole,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err == nil {
		slog.Info("User provisioned", "user_id", created.ID, "email", email)
		return created, nil
	}
	if !errors.Is(err, ErrEmailTaken) {
		slog.Error("Failed to create user", "email", email, "err", err)
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}

	// Lost the provisioning race; the winner's row is authoritative.
	winner, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		slog.Error("Failed to read back user after conflict", "email", email, "err", err)
		return User{}, fmt.Errorf("failed to read back user: %w", err)
	}
	return winner, nil
}

// GetUser returns a user by id
func (s *IamService) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// localPart returns the portion of an email before the '@'
func localPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
