// Package iam provisions User records for verified email identities.
//
// ResolveUserByEmail is the single entry point used by the login flow: it
// creates a user the first time an email passes verification and reconciles
// the email_verified flag on subsequent logins. Email uniqueness is enforced
// by the store, which makes provisioning idempotent under concurrent
// duplicate calls.
package iam
