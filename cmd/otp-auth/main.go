package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/otp-auth/pkg/account"
	"github.com/tendant/otp-auth/pkg/authflow"
	authapi "github.com/tendant/otp-auth/pkg/authflow/api"
	"github.com/tendant/otp-auth/pkg/config"
	"github.com/tendant/otp-auth/pkg/iam"
	"github.com/tendant/otp-auth/pkg/notification"
	"github.com/tendant/otp-auth/pkg/otp"
	"github.com/tendant/otp-auth/pkg/sessions"
)

type Config struct {
	DatabaseConfig config.DatabaseConfig
	EmailConfig    config.EmailConfig
	AuthConfig     config.AuthConfig
	AppConfig      app.AppConfig
}

func main() {
	// Create a logger with source enabled
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()
	app.RegisterHealthzRoutes(server.R)

	dbConfig := cfg.DatabaseConfig.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	notifier, err := notification.NewEmailNotifier(cfg.EmailConfig.ToSMTPConfig())
	if err != nil {
		slog.Error("Failed to create email notifier", "err", err)
		os.Exit(-1)
	}

	// Repositories
	otpRepo := otp.NewPostgresOtpRepository(pool)
	userRepo := iam.NewPostgresUserRepository(pool)
	sessionRepo := sessions.NewPostgresRepository(pool)
	accountRepo := account.NewPostgresAccountRepository(pool)

	// Services
	otpService := otp.NewOtpService(otpRepo, notifier,
		otp.WithCodeExpiry(cfg.AuthConfig.CodeExpiryDuration()),
	)
	iamService := iam.NewIamService(userRepo)
	sessionService := sessions.NewService(sessionRepo,
		sessions.WithSessionExpiry(cfg.AuthConfig.SessionExpiryDuration()),
	)
	linkService := account.NewLinkService(accountRepo, cfg.AuthConfig.TrustedProviderList())

	flowService := authflow.NewFlowService(otpService, iamService, sessionService)

	cookieName := cfg.AuthConfig.SessionCookieName()
	cookieSetter := sessions.NewCookieSetter(cookieName, cfg.AuthConfig.SecureCookie, cfg.AuthConfig.SessionExpiryDuration())
	authMiddleware := sessions.Middleware(sessionService, iamService, cookieName)

	handler := authapi.NewHandler(flowService, linkService, cookieSetter, cookieName)
	handler.RegisterRoutes(server.R, authMiddleware)

	slog.Info("OTP auth service ready",
		"cookie", cookieName,
		"code_expiry", cfg.AuthConfig.CodeExpiryDuration(),
		"session_expiry", cfg.AuthConfig.SessionExpiryDuration(),
	)

	server.Run()
}
