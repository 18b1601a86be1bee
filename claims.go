package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a session token: subject (username),
// issuer (instance domain), issued-at and expiry. It exists only inside the
// signed token; nothing is persisted server side.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// Subject returns the username the token was minted for.
func (c *SessionClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Issuer returns the instance domain that minted the token.
func (c *SessionClaims) Issuer() string {
	return c.RegisteredClaims.Issuer
}

// IssuedAt returns the minting time, zero if absent.
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Expires returns the expiry time, zero if absent.
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}
