package iam

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated identity keyed by email
type User struct {
	ID            uuid.UUID
	Email         string
	Name          string
	EmailVerified bool
	Role          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UserRepository defines the storage operations for users.
//
// The store must enforce a uniqueness constraint on email: CreateUser returns
// ErrEmailTaken when another row already holds the email, which is the sole
// concurrency-correctness mechanism for duplicate provisioning.
type UserRepository interface {
	// CreateUser inserts a new user. Returns ErrEmailTaken when the email
	// is already registered.
	CreateUser(ctx context.Context, user User) (User, error)

	// GetUserByEmail returns the user holding the email, or ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (User, error)

	// GetUserByID returns the user by id, or ErrUserNotFound.
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)

	// MarkEmailVerified sets email_verified and bumps updated_at.
	MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error
}
