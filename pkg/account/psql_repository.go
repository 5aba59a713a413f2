package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations
const uniqueViolation = "23505"

// PostgresAccountRepository implements AccountRepository using PostgreSQL.
// The accounts table has a unique constraint on (provider_id, account_id).
type PostgresAccountRepository struct {
	db *pgxpool.Pool
}

// NewPostgresAccountRepository creates a new PostgreSQL account repository
func NewPostgresAccountRepository(db *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

// CreateAccount inserts a new account link
func (r *PostgresAccountRepository) CreateAccount(ctx context.Context, account Account) error {
	query := `
		INSERT INTO accounts (id, user_id, provider_id, account_id, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		account.ID,
		account.UserID,
		account.ProviderID,
		account.AccountID,
		account.Password,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyLinked
		}
		return err
	}

	return nil
}

// FindByUserID returns all accounts linked to a user
func (r *PostgresAccountRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]Account, error) {
	query := `
		SELECT id, user_id, provider_id, account_id, password, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.ProviderID,
			&a.AccountID,
			&a.Password,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

// FindByProvider returns the account for a (provider, external account) pair
func (r *PostgresAccountRepository) FindByProvider(ctx context.Context, providerID, accountID string) (Account, error) {
	query := `
		SELECT id, user_id, provider_id, account_id, password, created_at, updated_at
		FROM accounts
		WHERE provider_id = $1
		AND account_id = $2
	`

	var a Account
	err := r.db.QueryRow(ctx, query, providerID, accountID).Scan(
		&a.ID,
		&a.UserID,
		&a.ProviderID,
		&a.AccountID,
		&a.Password,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}

	return a, nil
}
