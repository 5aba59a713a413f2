package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/otp-auth/pkg/iam"
	"golang.org/x/crypto/bcrypt"
)

// LocalProviderID identifies the local credential authentication method
const LocalProviderID = "credential"

// LinkService reconciles additional authentication methods against existing
// users. Linking is permitted only for providers in the trusted set and only
// when the provider-verified email matches the user's email, which prevents
// identity fragmentation when a user who registered via OTP later signs in
// through a social provider with the same address.
type LinkService struct {
	repo             AccountRepository
	trustedProviders map[string]bool
	now              func() time.Time
}

// LinkServiceOption defines configuration options
type LinkServiceOption func(*LinkService)

// WithClock sets the time source
func WithClock(now func() time.Time) LinkServiceOption {
	return func(s *LinkService) {
		s.now = now
	}
}

// NewLinkService creates a new account link service with the trusted
// provider ids taken from configuration
func NewLinkService(repo AccountRepository, trustedProviders []string, opts ...LinkServiceOption) *LinkService {
	trusted := make(map[string]bool, len(trustedProviders))
	for _, p := range trustedProviders {
		trusted[p] = true
	}

	service := &LinkService{
		repo:             repo,
		trustedProviders: trusted,
		now:              func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// LinkExternalAccount associates an external provider identity with an
// existing user instead of creating a second user. Re-linking an already
// linked (provider, account) pair is a no-op.
func (s *LinkService) LinkExternalAccount(ctx context.Context, user iam.User, providerID, accountID, verifiedEmail string) error {
	if !s.trustedProviders[providerID] {
		slog.Warn("Rejected link from untrusted provider", "provider", providerID, "user_id", user.ID)
		return ErrUntrustedProvider
	}

	if normalizeEmail(verifiedEmail) != normalizeEmail(user.Email) {
		slog.Warn("Rejected link with mismatched email", "provider", providerID, "user_id", user.ID)
		return ErrEmailMismatch
	}

	now := s.now()
	err := s.repo.CreateAccount(ctx, Account{
		ID:         uuid.New(),
		UserID:     user.ID,
		ProviderID: providerID,
		AccountID:  accountID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyLinked) {
			return nil
		}
		slog.Error("Failed to link account", "provider", providerID, "user_id", user.ID, "err", err)
		return fmt.Errorf("failed to link account: %w", err)
	}

	slog.Info("Account linked", "provider", providerID, "user_id", user.ID)
	return nil
}

// LinkLocalAccount stores a local credential method for the user with the
// password hashed via bcrypt
func (s *LinkService) LinkLocalAccount(ctx context.Context, user iam.User, password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	err = s.repo.CreateAccount(ctx, Account{
		ID:         uuid.New(),
		UserID:     user.ID,
		ProviderID: LocalProviderID,
		AccountID:  user.Email,
		Password:   string(hash),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyLinked) {
			return nil
		}
		slog.Error("Failed to link local account", "user_id", user.ID, "err", err)
		return fmt.Errorf("failed to link local account: %w", err)
	}

	slog.Info("Local account linked", "user_id", user.ID)
	return nil
}

// ListAccounts returns all authentication methods linked to a user
func (s *LinkService) ListAccounts(ctx context.Context, userID uuid.UUID) ([]Account, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
