package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	// Login resolves a username-or-email plus password to the account view
	// and a freshly minted session token.
	Login(ctx context.Context, identifier, password string) (*LocalUserView, string, error)

	// LocalUserFromToken resolves a session token to the account it was
	// minted for. Returns ErrUnknownSubject when the token is sound but the
	// account is gone; callers at the HTTP boundary collapse that to
	// ErrInvalidToken.
	LocalUserFromToken(ctx context.Context, token string) (*LocalUserView, error)

	// ChangePassword verifies the old password before applying the shared
	// new-password policy and swapping the hash.
	ChangePassword(ctx context.Context, user *LocalUserView, oldPassword, newPassword, confirmPassword string) error
}

type Auther struct {
	repo   RepositoryManager
	cfg    Config
	tokens TokenService
	logger Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, cfg Config) *Auther {
	return &Auther{
		repo:   repo,
		cfg:    cfg,
		tokens: NewTokenService(cfg, defLogger{}),
		logger: defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
		s.tokens = NewTokenService(s.cfg, logger)
	}
	return s
}

func (s *Auther) WithTokenService(tokens TokenService) *Auther {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

func (s *Auther) Login(ctx context.Context, identifier, password string) (*LocalUserView, string, error) {
	user, err := s.repo.Users().GetByNameOrEmail(ctx, identifier)
	if err != nil {
		// unknown identifier reads the same as a wrong password
		s.logger.Debug("login identifier did not resolve", "error", err)
		return nil, "", ErrInvalidLogin
	}

	// The verified-email gate runs before the password check: an unverified
	// account only ever learns about its verification state.
	if s.cfg.GetEmailRequired() && !user.LocalUser.EmailVerified {
		return nil, "", ErrEmailNotVerified
	}

	if err := VerifyPassword(&user.LocalUser, password); err != nil {
		s.logger.Debug("login password verification failed", "user", user.Person.Username)
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.Person.Username)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *Auther) LocalUserFromToken(ctx context.Context, token string) (*LocalUserView, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Users().GetByNameOrEmail(ctx, claims.Subject())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Warn("valid token for unknown subject", "subject", claims.Subject())
			return nil, ErrUnknownSubject
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve token subject")
	}

	return user, nil
}

func (s *Auther) ChangePassword(ctx context.Context, user *LocalUserView, oldPassword, newPassword, confirmPassword string) error {
	if err := VerifyPassword(&user.LocalUser, oldPassword); err != nil {
		return err
	}

	if err := ValidateNewPassword(newPassword, confirmPassword, s.cfg); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash new password")
	}

	if err := s.repo.Users().UpdatePassword(ctx, user.LocalUser.ID, hash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
	}

	return nil
}
