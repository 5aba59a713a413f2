package account

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Account associates a User with an authentication method: an external
// provider identity or the local credential method. Several accounts may
// point at one user; each is the record that a given method is allowed to
// authenticate as that user.
type Account struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ProviderID string
	AccountID  string
	// Password holds the bcrypt hash of the credential for the local
	// provider; empty for external providers.
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountRepository defines the storage operations for linked accounts
type AccountRepository interface {
	// CreateAccount inserts a new account link. Returns ErrAlreadyLinked
	// when the (provider, account) pair is already linked.
	CreateAccount(ctx context.Context, account Account) error

	// FindByUserID returns all accounts linked to a user
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]Account, error)

	// FindByProvider returns the account for a (provider, external account)
	// pair, or ErrAccountNotFound.
	FindByProvider(ctx context.Context, providerID, accountID string) (Account, error)
}
