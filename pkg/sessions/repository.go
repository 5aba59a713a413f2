package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for session data access
type Repository interface {
	// Create a new session
	Create(ctx context.Context, session Session) error

	// Get a session by its token, or ErrSessionNotFound
	GetByToken(ctx context.Context, token string) (Session, error)

	// Delete all sessions for a user, returning the number deleted
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// Delete a session by its token
	DeleteByToken(ctx context.Context, token string) error

	// Cleanup expired sessions (for maintenance)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
