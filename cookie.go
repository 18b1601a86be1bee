package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// AuthCookie is the fixed name of the session cookie.
const AuthCookie = "auth"

// CookieDuration is how long the browser keeps the session cookie. It is
// provisioned independently of the token expiry inside it.
const CookieDuration = 52 * 7 * 24 * time.Hour

// SessionCookie builds the session cookie carrying a signed token.
// HttpOnly and SameSite=Strict always; Secure except in development.
func SessionCookie(token string, cfg Config) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     AuthCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(CookieDuration),
		HTTPOnly: true,
		Secure:   !cfg.GetDevelopment(),
		SameSite: fiber.CookieSameSiteStrictMode,
	}

	// Must not set cookie domain on localhost
	// https://stackoverflow.com/a/1188145
	domain := cfg.GetDomain()
	if !isLoopbackHost(domain) {
		cookie.Domain = domain
	}

	return cookie
}

// ClearSessionCookie returns the removal form of the session cookie: same
// descriptor, empty value, expiry in the past.
func ClearSessionCookie(cfg Config) *fiber.Cookie {
	cookie := SessionCookie("", cfg)
	cookie.Expires = time.Now().Add(-time.Hour)
	return cookie
}

func isLoopbackHost(domain string) bool {
	return strings.HasPrefix(domain, "localhost") ||
		strings.HasPrefix(domain, "127.0.0.1")
}
