package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ResetTokenValidity is the window in which a reset token can be consumed.
const ResetTokenValidity = time.Hour

type InitializePasswordResetMessage struct {
	Email string `json:"email" doc:"Account email the reset link is sent to."`
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset_initialize" }

type InitializePasswordResetHandler struct {
	repo   RepositoryManager
	mailer Mailer
	logger Logger
}

// NewInitializePasswordResetHandler creates a handler with sane defaults.
func NewInitializePasswordResetHandler(repo RepositoryManager) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:   repo,
		mailer: NewLogMailer(nil),
		logger: defLogger{},
	}
}

// WithMailer sets the outbound mail collaborator.
func (h *InitializePasswordResetHandler) WithMailer(mailer Mailer) *InitializePasswordResetHandler {
	if mailer != nil {
		h.mailer = mailer
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// Execute creates a reset request for the matching account and dispatches
// the email. It reports success whether or not the address matches an
// account: every internal failure is logged and swallowed so the caller
// cannot enumerate registered emails through errors or response shape.
func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		h.execute(ctx, event)
		return nil
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(event.Email))

	user, err := h.repo.Users().GetByNameOrEmail(ctx, email)
	if err != nil {
		h.logger.Warn("password reset requested for unknown email", "error", err)
		return
	}

	now := time.Now()
	reset := &PasswordResetRequest{
		ID:          uuid.New(),
		Token:       uuid.NewString(),
		LocalUserID: user.LocalUser.ID,
		CreatedAt:   &now,
		ExpiresAt:   now.Add(ResetTokenValidity),
	}

	if _, err := h.repo.PasswordResets().Create(ctx, reset); err != nil {
		h.logger.Error("failed to create password reset request", "error", err)
		return
	}

	if err := h.mailer.SendResetEmail(ctx, email, reset.Token); err != nil {
		h.logger.Error("failed to send password reset email", "error", err)
	}
}
