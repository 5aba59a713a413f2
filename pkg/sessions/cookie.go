package sessions

import (
	"net/http"
	"time"
)

// CookieSetter interface defines methods for session cookie operations
type CookieSetter interface {
	// SetCookie sets the session cookie with the given token and expiry
	SetCookie(w http.ResponseWriter, token string, expire time.Time) error

	// ClearCookie clears the session cookie
	ClearCookie(w http.ResponseWriter) error
}

// BaseCookieSetter provides a base implementation of CookieSetter.
// The cookie is HTTP-only with SameSite=Lax on path /; Secure is enabled in
// production deployments.
type BaseCookieSetter struct {
	Name     string
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	MaxAge   int
}

// SetCookie sets the session cookie with the given token and expiry
func (c *BaseCookieSetter) SetCookie(w http.ResponseWriter, token string, expire time.Time) error {
	cookie := &http.Cookie{
		Name:     c.Name,
		Path:     c.Path,
		Value:    token,
		Expires:  expire,
		MaxAge:   c.MaxAge,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}

	http.SetCookie(w, cookie)
	return nil
}

// ClearCookie clears the session cookie
func (c *BaseCookieSetter) ClearCookie(w http.ResponseWriter) error {
	cookie := &http.Cookie{
		Name:     c.Name,
		Path:     c.Path,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
	}

	http.SetCookie(w, cookie)
	return nil
}

// NewCookieSetter creates a cookie setter for the named session cookie
func NewCookieSetter(name string, secure bool, maxAge time.Duration) CookieSetter {
	return &BaseCookieSetter{
		Name:     name,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	}
}
