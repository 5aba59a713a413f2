package api

import "github.com/google/uuid"

// SendOTPRequest represents the request to send a login code
type SendOTPRequest struct {
	Email string `json:"email"`
}

// VerifyOTPRequest represents the request to verify a login code
type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// UserInfo is the user payload returned after a successful login
type UserInfo struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// SendOTPResponse represents the response after sending a code
type SendOTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// VerifyOTPResponse represents the response after a successful login
type VerifyOTPResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	User    UserInfo `json:"user"`
}

// LogoutResponse represents the response after logout
type LogoutResponse struct {
	Success bool `json:"success"`
}

// AccountInfo describes an authentication method linked to the user
type AccountInfo struct {
	ProviderID string `json:"provider_id"`
	AccountID  string `json:"account_id"`
}

// MeResponse is the authenticated user profile
type MeResponse struct {
	ID       uuid.UUID     `json:"id"`
	Email    string        `json:"email"`
	Name     string        `json:"name"`
	Role     string        `json:"role"`
	Accounts []AccountInfo `json:"accounts"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
