package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

// Authentication failures. ErrInvalidLogin and ErrInvalidToken are
// deliberately undifferentiated: callers must not be able to tell a wrong
// password from an unknown account, or a bad signature from an expired
// token. The specific cause only ever reaches the logs.
var (
	ErrInvalidLogin = goerrors.New("invalid login", goerrors.CategoryAuth).
			WithTextCode("INVALID_LOGIN")

	ErrInvalidToken = goerrors.New("invalid authentication token", goerrors.CategoryAuth).
			WithTextCode("INVALID_TOKEN")

	ErrEmailNotVerified = goerrors.New("verify your email address to login", goerrors.CategoryAuth).
				WithTextCode("EMAIL_NOT_VERIFIED")

	// ErrUnknownSubject means a token validated but its subject no longer
	// resolves to a local user. Internal only; the HTTP boundary collapses
	// it to ErrInvalidToken.
	ErrUnknownSubject = goerrors.New("token subject does not resolve to a local user", goerrors.CategoryAuth).
				WithTextCode("UNKNOWN_SUBJECT")
)

// Validation failures surface verbatim to the caller.
var (
	ErrPasswordMismatch = goerrors.New("passwords do not match", goerrors.CategoryValidation).
				WithTextCode("PASSWORD_MISMATCH")

	ErrPasswordTooWeak = goerrors.New("password does not meet the minimum requirements", goerrors.CategoryValidation).
				WithTextCode("PASSWORD_TOO_WEAK")

	ErrInvalidEmail = goerrors.New("invalid email address", goerrors.CategoryValidation).
			WithTextCode("INVALID_EMAIL")

	ErrInvalidDisplayName = goerrors.New("invalid display name", goerrors.CategoryValidation).
				WithTextCode("INVALID_DISPLAY_NAME")
)

// Single-use token failures. Absent, expired, and already-consumed tokens
// all produce the same error.
var (
	ErrResetTokenInvalid = goerrors.New("invalid or expired password reset token", goerrors.CategoryNotFound).
				WithTextCode("RESET_TOKEN_INVALID")

	ErrVerificationTokenInvalid = goerrors.New("invalid or expired verification token", goerrors.CategoryNotFound).
					WithTextCode("VERIFICATION_TOKEN_INVALID")
)

// ErrNotOwner is returned when an authenticated caller touches a resource
// that belongs to somebody else.
var ErrNotOwner = goerrors.New("resource does not belong to the caller", goerrors.CategoryAuthz).
	WithTextCode("NOT_OWNER")

// ErrMissingSigningSecret means the process has no signing secret configured.
var ErrMissingSigningSecret = goerrors.New("no signing secret configured", goerrors.CategoryInternal).
	WithTextCode("MISSING_SIGNING_SECRET")
