package config

import (
	"fmt"
	"strings"
	"time"

	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/otp-auth/pkg/notification"
)

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Host     string `env:"AUTH_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"AUTH_PG_PORT" env-default:"5432"`
	Database string `env:"AUTH_PG_DATABASE" env-default:"auth_db"`
	User     string `env:"AUTH_PG_USER" env-default:"auth"`
	Password string `env:"AUTH_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"AUTH_PG_SCHEMA" env-default:"public"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

// ToDbConfig converts the config to a db-utils DbConfig
func (d DatabaseConfig) ToDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}

// EmailConfig holds SMTP email configuration
type EmailConfig struct {
	Host     string `env:"EMAIL_HOST" env-default:"localhost"`
	Port     uint16 `env:"EMAIL_PORT" env-default:"1025"`
	Username string `env:"EMAIL_USERNAME" env-default:"noreply@example.com"`
	Password string `env:"EMAIL_PASSWORD" env-default:"pwd"`
	From     string `env:"EMAIL_FROM" env-default:"noreply@example.com"`
	TLS      bool   `env:"EMAIL_TLS" env-default:"false"`
}

// ToSMTPConfig converts the config to a notification.SMTPConfig
func (e EmailConfig) ToSMTPConfig() notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:     e.Host,
		Port:     int(e.Port),
		Username: e.Username,
		Password: e.Password,
		From:     e.From,
		TLS:      e.TLS,
	}
}

// AuthConfig holds OTP and session policy configuration.
// The struct is built once in main and passed by reference into the
// component constructors; there is no ambient global lookup.
type AuthConfig struct {
	CookiePrefix     string `env:"AUTH_COOKIE_PREFIX" env-default:"otp-auth"`
	SecureCookie     bool   `env:"AUTH_SECURE_COOKIE" env-default:"false"`
	CodeExpiry       string `env:"AUTH_CODE_EXPIRY" env-default:"10m"`
	SessionExpiry    string `env:"AUTH_SESSION_EXPIRY" env-default:"720h"`
	TrustedProviders string `env:"AUTH_TRUSTED_PROVIDERS" env-default:"google,apple"`
}

// SessionCookieName returns the name of the session cookie,
// e.g. "otp-auth.session_token"
func (a AuthConfig) SessionCookieName() string {
	return a.CookiePrefix + ".session_token"
}

// CodeExpiryDuration parses the OTP code expiry, falling back to 10 minutes
func (a AuthConfig) CodeExpiryDuration() time.Duration {
	d, err := time.ParseDuration(a.CodeExpiry)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// SessionExpiryDuration parses the session expiry, falling back to 30 days
func (a AuthConfig) SessionExpiryDuration() time.Duration {
	d, err := time.ParseDuration(a.SessionExpiry)
	if err != nil || d <= 0 {
		return 30 * 24 * time.Hour
	}
	return d
}

// TrustedProviderList splits the comma-separated trusted provider ids
func (a AuthConfig) TrustedProviderList() []string {
	parts := strings.Split(a.TrustedProviders, ",")
	providers := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			providers = append(providers, trimmed)
		}
	}
	return providers
}
