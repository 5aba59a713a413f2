// Package main runs the OTP auth service without a database or SMTP server.
// One-time passcodes are logged to the console instead of being emailed, and
// all state lives in memory. Useful for:
// - Quick development and testing
// - Demo/prototype environments
// - Learning the API without infrastructure setup
//
// Note: All data is lost when the server stops. For production, use
// cmd/otp-auth with PostgreSQL and SMTP.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/tendant/chi-demo/app"
	"github.com/tendant/cors"
	"github.com/tendant/otp-auth/pkg/account"
	"github.com/tendant/otp-auth/pkg/authflow"
	authapi "github.com/tendant/otp-auth/pkg/authflow/api"
	"github.com/tendant/otp-auth/pkg/iam"
	"github.com/tendant/otp-auth/pkg/notification"
	"github.com/tendant/otp-auth/pkg/otp"
	"github.com/tendant/otp-auth/pkg/sessions"
)

const (
	cookieName = "otp-auth.session_token"
	demoEmail  = "demo@example.com"
)

// consoleNotifier logs the passcode instead of emailing it
type consoleNotifier struct{}

func (consoleNotifier) Send(noticeType notification.NoticeType, n notification.NotificationData) error {
	slog.Info("Login code issued (demo mode, not emailed)", "to", n.To, "code", n.Data["Code"])
	return nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting In-Memory OTP Auth Service (no database required)")
	slog.Info(strings.Repeat("=", 60))

	// Initialize all in-memory repositories
	otpRepo := otp.NewInMemoryOtpRepository()
	userRepo := iam.NewInMemoryUserRepository()
	sessionRepo := sessions.NewInMemoryRepository()
	accountRepo := account.NewInMemoryAccountRepository()

	// Create services
	otpService := otp.NewOtpService(otpRepo, consoleNotifier{})
	iamService := iam.NewIamService(userRepo)
	sessionService := sessions.NewService(sessionRepo)
	linkService := account.NewLinkService(accountRepo, []string{"google", "apple"})
	flowService := authflow.NewFlowService(otpService, iamService, sessionService)

	seedDemoUser(iamService, linkService)

	// Setup HTTP server
	server := app.NewApp(
		app.WithPort(4000),
		app.WithCORS(&cors.Options{
			AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)
	app.RegisterHealthzRoutes(server.R)

	cookieSetter := sessions.NewCookieSetter(cookieName, false, 30*24*time.Hour)
	authMiddleware := sessions.Middleware(sessionService, iamService, cookieName)
	handler := authapi.NewHandler(flowService, linkService, cookieSetter, cookieName)
	handler.RegisterRoutes(server.R, authMiddleware)

	slog.Info(strings.Repeat("=", 60))
	slog.Info("In-Memory OTP Auth Service Ready")
	slog.Info("")
	slog.Info("API Endpoints:")
	slog.Info("  POST /otp/send    - Request a login code (logged to console)")
	slog.Info("  POST /otp/verify  - Verify the code and start a session")
	slog.Info("  POST /auth/logout - End the session")
	slog.Info("  GET  /auth/me     - Current user (auth required)")
	slog.Info(strings.Repeat("=", 60))

	server.Run()
}

// seedDemoUser provisions a demo account with a linked social identity so
// /auth/me has something to show on first login
func seedDemoUser(iamService *iam.IamService, linkService *account.LinkService) {
	ctx := context.Background()

	user, err := iamService.ResolveUserByEmail(ctx, demoEmail)
	if err != nil {
		slog.Error("Failed to seed demo user", "err", err)
		return
	}

	if err := linkService.LinkExternalAccount(ctx, user, "google", "demo-google-id", demoEmail); err != nil {
		slog.Error("Failed to link demo account", "err", err)
		return
	}

	slog.Info("Seeded demo user", "email", demoEmail, "user_id", user.ID)
}
