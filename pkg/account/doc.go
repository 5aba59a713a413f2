// Package account links additional authentication methods to existing users.
//
// A link is permitted only when the provider is in the configured trusted set
// and the provider-verified email matches the user's email. This keeps a user
// who registered via the OTP flow and later authenticates through a social
// provider as a single identity.
package account
