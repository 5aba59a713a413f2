package sessions

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/otp-auth/pkg/iam"
)

type contextKey string

const (
	sessionCtxKey contextKey = "session"
	userCtxKey    contextKey = "user"
)

// Middleware resolves the session cookie to a Session and its User and
// attaches both to the request context. Requests without a live session get
// a 401 and never reach the handler.
func Middleware(service *Service, users *iam.IamService, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]string{"error": "Unauthorized"})
				return
			}

			session, err := service.ValidateToken(r.Context(), cookie.Value)
			if err != nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]string{"error": "Unauthorized"})
				return
			}

			user, err := users.GetUser(r.Context(), session.UserID)
			if err != nil {
				slog.Error("Session resolved but user lookup failed", "user_id", session.UserID, "err", err)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]string{"error": "Unauthorized"})
				return
			}

			ctx := context.WithValue(r.Context(), sessionCtxKey, session)
			ctx = context.WithValue(ctx, userCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the session attached by Middleware
func FromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionCtxKey).(Session)
	return session, ok
}

// UserFromContext returns the user attached by Middleware
func UserFromContext(ctx context.Context) (iam.User, bool) {
	user, ok := ctx.Value(userCtxKey).(iam.User)
	return user, ok
}
