package otp

import "errors"

var (
	// ErrInvalidEmail is returned when the submitted email is not syntactically valid
	ErrInvalidEmail = errors.New("valid email is required")

	// ErrChallengeNotFound is returned when no matching unconsumed, unexpired
	// challenge exists. Wrong code, expired code, already-consumed code and
	// never-issued code all collapse into this one error so the caller cannot
	// tell which case occurred.
	ErrChallengeNotFound = errors.New("invalid or expired OTP")

	// ErrDeliveryFailed is returned when the OTP email could not be sent.
	// The challenge remains persisted; delivery is not retried.
	ErrDeliveryFailed = errors.New("failed to send OTP email")
)
