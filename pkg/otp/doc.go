// Package otp implements email one-time-passcode challenges.
//
// A challenge is a 6-digit code bound to an email identifier with a 10-minute
// expiry. Issuing a challenge supersedes any pending challenge for the same
// identifier, so at most one live code exists per email at any time.
// Verification consumes the challenge with a single conditional update:
// wrong, expired, consumed and never-issued codes all fail with the same
// error, and a valid code verifies exactly once even under concurrent
// submissions.
//
// # Basic Usage
//
//	repo := otp.NewPostgresOtpRepository(pool)
//	service := otp.NewOtpService(repo, notifier,
//		otp.WithCodeExpiry(10*time.Minute),
//	)
//
//	// Issue and email a code
//	_, err := service.Send(ctx, "user@example.com")
//
//	// Verify a submitted code
//	identifier, err := service.Verify(ctx, "user@example.com", "123456")
//
// For tests and demos use NewInMemoryOtpRepository and a
// notification.MockNotifier.
package otp
