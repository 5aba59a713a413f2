package otp

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresOtpRepository implements OtpRepository using PostgreSQL.
// The otp table carries a uniqueness constraint on identifier, which is the
// store-level mechanism keeping at most one live challenge per identifier.
type PostgresOtpRepository struct {
	db *pgxpool.Pool
}

// NewPostgresOtpRepository creates a new PostgreSQL OTP repository
func NewPostgresOtpRepository(db *pgxpool.Pool) *PostgresOtpRepository {
	return &PostgresOtpRepository{db: db}
}

// ReplaceChallenge supersedes any existing challenge for the identifier.
// The upsert keys on the identifier uniqueness constraint, so two concurrent
// sends race on last-writer-wins and never leave two live challenges.
func (r *PostgresOtpRepository) ReplaceChallenge(ctx context.Context, challenge Challenge) error {
	query := `
		INSERT INTO otp (id, identifier, code, expires_at, consumed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (identifier) DO UPDATE
		SET id = EXCLUDED.id,
		    code = EXCLUDED.code,
		    expires_at = EXCLUDED.expires_at,
		    consumed = EXCLUDED.consumed,
		    created_at = EXCLUDED.created_at
	`

	_, err := r.db.Exec(ctx, query,
		challenge.ID,
		challenge.Identifier,
		challenge.Code,
		challenge.ExpiresAt,
		challenge.Consumed,
		challenge.CreatedAt,
	)
	return err
}

// ConsumeChallenge flips consumed in a single conditional update so that
// concurrent verifications of the same code produce exactly one winner.
func (r *PostgresOtpRepository) ConsumeChallenge(ctx context.Context, identifier, code string, now time.Time) (Challenge, error) {
	query := `
		UPDATE otp
		SET consumed = TRUE
		WHERE identifier = $1
		AND code = $2
		AND consumed = FALSE
		AND expires_at > $3
		RETURNING id, identifier, code, expires_at, consumed, created_at
	`

	var c Challenge
	err := r.db.QueryRow(ctx, query, identifier, code, now).Scan(
		&c.ID,
		&c.Identifier,
		&c.Code,
		&c.ExpiresAt,
		&c.Consumed,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Challenge{}, ErrChallengeNotFound
		}
		return Challenge{}, err
	}

	return c, nil
}

// GetActiveChallenge returns the live challenge for an identifier
func (r *PostgresOtpRepository) GetActiveChallenge(ctx context.Context, identifier string, now time.Time) (Challenge, error) {
	query := `
		SELECT id, identifier, code, expires_at, consumed, created_at
		FROM otp
		WHERE identifier = $1
		AND consumed = FALSE
		AND expires_at > $2
	`

	var c Challenge
	err := r.db.QueryRow(ctx, query, identifier, now).Scan(
		&c.ID,
		&c.Identifier,
		&c.Code,
		&c.ExpiresAt,
		&c.Consumed,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Challenge{}, ErrChallengeNotFound
		}
		return Challenge{}, err
	}

	return c, nil
}

// DeleteExpired removes challenges past their expiry
func (r *PostgresOtpRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM otp
		WHERE expires_at <= $1
	`

	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
