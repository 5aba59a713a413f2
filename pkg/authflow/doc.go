// Package authflow wires the OTP login flow end to end.
//
// FlowService sequences the three steps of a login attempt: consume the
// submitted code (pkg/otp), resolve or provision the user (pkg/iam), and
// replace the user's sessions with a fresh one (pkg/sessions). The api
// subpackage binds the flow to HTTP: POST /otp/send, POST /otp/verify,
// POST /auth/logout and GET /auth/me.
package authflow
