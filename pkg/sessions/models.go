package sessions

import (
	"time"

	"github.com/google/uuid"
)

// Session represents an active authentication session. The token is the
// opaque credential handed to the client; it is distinct from the row id and
// is the only value that ever leaves the server.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Metadata carries best-effort provenance captured from the originating
// request. Absent values are acceptable.
type Metadata struct {
	IPAddress string
	UserAgent string
}
