package iam

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUserByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("ProvisionsNewUser", func(t *testing.T) {
		repo := NewInMemoryUserRepository()
		service := NewIamService(repo)

		user, err := service.ResolveUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "alice", user.Name)
		assert.True(t, user.EmailVerified)
		assert.Equal(t, DefaultRole, user.Role)
	})

	t.Run("Idempotent", func(t *testing.T) {
		repo := NewInMemoryUserRepository()
		service := NewIamService(repo)

		first, err := service.ResolveUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		second, err := service.ResolveUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("MarksExistingUserVerified", func(t *testing.T) {
		repo := NewInMemoryUserRepository()
		service := NewIamService(repo)

		existing, err := repo.CreateUser(ctx, User{
			ID:            uuid.New(),
			Email:         "bob@example.com",
			Name:          "Bob",
			EmailVerified: false,
			Role:          "admin",
			CreatedAt:     time.Now().UTC(),
			UpdatedAt:     time.Now().UTC(),
		})
		require.NoError(t, err)

		resolved, err := service.ResolveUserByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, resolved.ID)
		assert.True(t, resolved.EmailVerified)
		// Name and role stay untouched
		assert.Equal(t, "Bob", resolved.Name)
		assert.Equal(t, "admin", resolved.Role)
	})

	t.Run("LosingRaceReadsBackWinner", func(t *testing.T) {
		repo := NewInMemoryUserRepository()
		service := NewIamService(&racingUserRepository{inner: repo})

		winner, err := repo.CreateUser(ctx, User{
			ID:            uuid.New(),
			Email:         "carol@example.com",
			Name:          "carol",
			EmailVerified: true,
			Role:          DefaultRole,
			CreatedAt:     time.Now().UTC(),
			UpdatedAt:     time.Now().UTC(),
		})
		require.NoError(t, err)

		resolved, err := service.ResolveUserByEmail(ctx, "carol@example.com")
		require.NoError(t, err)
		assert.Equal(t, winner.ID, resolved.ID)
	})
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserRepository()
	service := NewIamService(repo)

	user, err := service.ResolveUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	found, err := service.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = service.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLocalPart(t *testing.T) {
	assert.Equal(t, "alice", localPart("alice@example.com"))
	assert.Equal(t, "a.b+tag", localPart("a.b+tag@example.com"))
	assert.Equal(t, "noat", localPart("noat"))
}

// racingUserRepository simulates losing a provisioning race: the initial
// lookup misses even though the winner's row already exists, so CreateUser
// hits the uniqueness constraint.
type racingUserRepository struct {
	inner  *InMemoryUserRepository
	looked bool
}

func (r *racingUserRepository) CreateUser(ctx context.Context, user User) (User, error) {
	return r.inner.CreateUser(ctx, user)
}

func (r *racingUserRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	if !r.looked {
		r.looked = true
		return User{}, ErrUserNotFound
	}
	return r.inner.GetUserByEmail(ctx, email)
}

func (r *racingUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return r.inner.GetUserByID(ctx, id)
}

func (r *racingUserRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.inner.MarkEmailVerified(ctx, id, at)
}
