package sessions

import "errors"

var (
	// ErrSessionNotFound is returned when a token resolves to no live
	// session. Missing and expired sessions are not distinguished.
	ErrSessionNotFound = errors.New("session not found")
)
