package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// VerificationTokenValidity bounds how long a pending email binding can sit
// unconfirmed before it stops resolving.
const VerificationTokenValidity = 7 * 24 * time.Hour

type RequestEmailVerificationMessage struct {
	LocalUserID  uuid.UUID `json:"-"`
	PendingEmail string    `json:"email" doc:"Address to verify; committed to the account on confirmation."`
}

func (p RequestEmailVerificationMessage) Type() string { return "user.email_verification_request" }

type ConfirmEmailVerificationMessage struct {
	Token string `json:"token" doc:"Single-use verification token from the email link."`
}

func (p ConfirmEmailVerificationMessage) Type() string { return "user.email_verification_confirm" }

type EmailVerificationHandler struct {
	repo   RepositoryManager
	mailer Mailer
	logger Logger
}

// NewEmailVerificationHandler creates a handler with sane defaults.
func NewEmailVerificationHandler(repo RepositoryManager) *EmailVerificationHandler {
	return &EmailVerificationHandler{
		repo:   repo,
		mailer: NewLogMailer(nil),
		logger: defLogger{},
	}
}

// WithMailer sets the outbound mail collaborator.
func (h *EmailVerificationHandler) WithMailer(mailer Mailer) *EmailVerificationHandler {
	if mailer != nil {
		h.mailer = mailer
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *EmailVerificationHandler) WithLogger(logger Logger) *EmailVerificationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// Request validates the address, stores the pending binding and dispatches
// the verification email. The account's current email is untouched until
// the token is confirmed.
func (h *EmailVerificationHandler) Request(ctx context.Context, event RequestEmailVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification request",
		)
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(event.PendingEmail))
	if err := ValidateEmail(email); err != nil {
		return err
	}

	now := time.Now()
	binding := &EmailVerificationToken{
		ID:           uuid.New(),
		Token:        uuid.NewString(),
		LocalUserID:  event.LocalUserID,
		PendingEmail: email,
		CreatedAt:    &now,
		ExpiresAt:    now.Add(VerificationTokenValidity),
	}

	if _, err := h.repo.EmailVerifications().Create(ctx, binding); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create email verification token")
	}

	if err := h.mailer.SendVerificationEmail(ctx, email, binding.Token); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send verification email")
	}

	return nil
}

// Confirm consumes the binding and commits the pending address onto the
// account, flipping email_verified. Consumption and commit share one
// transaction so a confirmed token can never resolve again.
func (h *EmailVerificationHandler) Confirm(ctx context.Context, event ConfirmEmailVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification confirmation",
		)
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		binding, err := h.repo.EmailVerifications().ConsumeTx(ctx, tx, event.Token)
		if err != nil {
			return err
		}

		if time.Now().After(binding.ExpiresAt) {
			return ErrVerificationTokenInvalid
		}

		return h.repo.Users().CommitVerifiedEmailTx(ctx, tx, binding.LocalUserID, binding.PendingEmail)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to confirm email verification")
	}

	return nil
}
