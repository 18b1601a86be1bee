package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenExpiration is how long a freshly minted session token stays valid.
// The cookie carrying it is provisioned independently (see cookie.go); a
// stale cookie holding an expired token still fails validation here.
const TokenExpiration = 365 * 24 * time.Hour

// TokenService mints and verifies signed session tokens.
type TokenService interface {
	Issue(subject string) (string, error)
	Validate(token string) (*SessionClaims, error)
}

type tokenService struct {
	cfg    Config
	logger Logger
}

// NewTokenService creates a TokenService bound to the given configuration.
// The signing secret is re-read from cfg on every operation.
func NewTokenService(cfg Config, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &tokenService{cfg: cfg, logger: logger}
}

// Issue mints an HS256 token with sub/iss/iat/exp claims.
func (ts *tokenService) Issue(subject string) (string, error) {
	secret, err := ReadSigningSecret(ts.cfg)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    ts.cfg.GetDomain(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}

	return signed, nil
}

// Validate parses and verifies a token string. Every failure mode beyond a
// missing secret collapses to ErrInvalidToken so the error never tells a
// caller why validation failed; the cause goes to the log instead.
func (ts *tokenService) Validate(tokenString string) (*SessionClaims, error) {
	secret, err := ReadSigningSecret(ts.cfg)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		ts.logger.Debug("token validation failed", "error", err)
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		ts.logger.Debug("token validated but claims could not be decoded")
		return nil, ErrInvalidToken
	}

	return claims, nil
}
