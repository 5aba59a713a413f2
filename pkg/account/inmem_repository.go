package account

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryAccountRepository implements AccountRepository using in-memory storage
type InMemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]Account
	byKey    map[string]uuid.UUID // providerID + "\x00" + accountID -> account id
}

// NewInMemoryAccountRepository creates a new in-memory account repository
func NewInMemoryAccountRepository() *InMemoryAccountRepository {
	return &InMemoryAccountRepository{
		accounts: make(map[uuid.UUID]Account),
		byKey:    make(map[string]uuid.UUID),
	}
}

func providerKey(providerID, accountID string) string {
	return providerID + "\x00" + accountID
}

// CreateAccount inserts a new account link, enforcing (provider, account)
// uniqueness under the lock
func (r *InMemoryAccountRepository) CreateAccount(ctx context.Context, account Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := providerKey(account.ProviderID, account.AccountID)
	if _, exists := r.byKey[key]; exists {
		return ErrAlreadyLinked
	}

	r.accounts[account.ID] = account
	r.byKey[key] = account.ID
	return nil
}

// FindByUserID returns all accounts linked to a user
func (r *InMemoryAccountRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var accounts []Account
	for _, account := range r.accounts {
		if account.UserID == userID {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

// FindByProvider returns the account for a (provider, external account) pair
func (r *InMemoryAccountRepository) FindByProvider(ctx context.Context, providerID, accountID string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[providerKey(providerID, accountID)]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return r.accounts[id], nil
}
