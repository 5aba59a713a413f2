package iam

import "errors"

var (
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned by CreateUser when the email is already
	// registered. Callers recover by re-reading the winning row; this error
	// is never surfaced to the end user.
	ErrEmailTaken = errors.New("email already registered")
)
