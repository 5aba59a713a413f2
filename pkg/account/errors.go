package account

import "errors"

var (
	// ErrUntrustedProvider is returned when linking is attempted for a
	// provider outside the configured trusted set
	ErrUntrustedProvider = errors.New("provider is not trusted for account linking")

	// ErrEmailMismatch is returned when the provider-verified email does
	// not match the user's email
	ErrEmailMismatch = errors.New("verified email does not match user email")

	// ErrAccountNotFound is returned when no account matches the lookup
	ErrAccountNotFound = errors.New("account not found")

	// ErrAlreadyLinked is returned by the repository when the (provider,
	// account) pair is already linked to a user
	ErrAlreadyLinked = errors.New("account already linked")
)
