// Package sessions issues and validates server-side sessions.
//
// A session is minted after a successful OTP verification: every prior
// session for the user is deleted first, so a user holds exactly one valid
// session immediately after login. The client receives only the opaque token,
// transported in an HTTP-only SameSite=Lax cookie; Middleware resolves that
// cookie back to the session and user on authenticated routes.
package sessions
