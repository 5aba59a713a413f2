package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"
	"github.com/tendant/otp-auth/pkg/account"
	"github.com/tendant/otp-auth/pkg/authflow"
	"github.com/tendant/otp-auth/pkg/otp"
	"github.com/tendant/otp-auth/pkg/sessions"
)

// Handler exposes the OTP login flow over HTTP
type Handler struct {
	flow         *authflow.FlowService
	links        *account.LinkService
	cookieSetter sessions.CookieSetter
	cookieName   string
}

// NewHandler creates a new auth flow API handler
func NewHandler(flow *authflow.FlowService, links *account.LinkService, cookieSetter sessions.CookieSetter, cookieName string) *Handler {
	return &Handler{
		flow:         flow,
		links:        links,
		cookieSetter: cookieSetter,
		cookieName:   cookieName,
	}
}

// RegisterRoutes mounts the auth endpoints. Routes wrapped with
// authMiddleware require a live session cookie.
func (h *Handler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/otp/send", h.SendOTP)
	r.Post("/otp/verify", h.VerifyOTP)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/logout", h.Logout)
		r.With(authMiddleware).Get("/me", h.Me)
	})
}

// SendOTP handles POST /otp/send
func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Valid email is required"})
		return
	}

	err := h.flow.SendCode(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, otp.ErrInvalidEmail):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{Error: "Valid email is required"})
		case errors.Is(err, otp.ErrDeliveryFailed):
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, ErrorResponse{Error: "Failed to send OTP email"})
		default:
			slog.Error("Failed to send OTP", "error", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, SendOTPResponse{
		Success: true,
		Message: "OTP sent to your email",
	})
}

// VerifyOTP handles POST /otp/verify
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Email and code are required"})
		return
	}

	if req.Email == "" || req.Code == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Email and code are required"})
		return
	}

	result, err := h.flow.VerifyAndLogin(r.Context(), req.Email, req.Code, sessions.Metadata{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		if errors.Is(err, otp.ErrChallengeNotFound) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{Error: "Invalid or expired OTP"})
			return
		}
		slog.Error("Failed to complete login", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Internal server error"})
		return
	}

	h.cookieSetter.SetCookie(w, result.Session.Token, result.Session.ExpiresAt)

	var user UserInfo
	copier.Copy(&user, &result.User)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, VerifyOTPResponse{
		Success: true,
		Message: "Login successful",
		User:    user,
	})
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if err := h.flow.Logout(r.Context(), cookie.Value); err != nil {
			slog.Error("Failed to revoke session", "error", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "Internal server error"})
			return
		}
	}

	h.cookieSetter.ClearCookie(w)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, LogoutResponse{Success: true})
}

// Me handles GET /auth/me behind the session middleware
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := sessions.UserFromContext(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var resp MeResponse
	copier.Copy(&resp, &user)

	linked, err := h.links.ListAccounts(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to list linked accounts", "user_id", user.ID, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Internal server error"})
		return
	}
	resp.Accounts = make([]AccountInfo, 0, len(linked))
	for _, a := range linked {
		resp.Accounts = append(resp.Accounts, AccountInfo{ProviderID: a.ProviderID, AccountID: a.AccountID})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// clientIP returns the originating client address, best-effort
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.Index(fwd, ","); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	return r.RemoteAddr
}
