package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// UpdateProfileParams carries a profile mutation. An omitted text field is
// left unchanged; an empty string clears it, and a cleared field is stored
// as NULL rather than "".
type UpdateProfileParams struct {
	DisplayName        *string `json:"display_name,omitempty"`
	Bio                *string `json:"bio,omitempty"`
	Email              *string `json:"email,omitempty"`
	EmailNotifications *bool   `json:"email_notifications,omitempty"`
}

type UpdateProfileHandler struct {
	repo         RepositoryManager
	verification *EmailVerificationHandler
	logger       Logger
}

// NewUpdateProfileHandler creates a handler with sane defaults.
func NewUpdateProfileHandler(repo RepositoryManager) *UpdateProfileHandler {
	return &UpdateProfileHandler{
		repo:         repo,
		verification: NewEmailVerificationHandler(repo),
		logger:       defLogger{},
	}
}

// WithVerificationHandler sets the handler used for email-change sends.
func (h *UpdateProfileHandler) WithVerificationHandler(v *EmailVerificationHandler) *UpdateProfileHandler {
	if v != nil {
		h.verification = v
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *UpdateProfileHandler) WithLogger(logger Logger) *UpdateProfileHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// Execute validates and applies a profile mutation. The public (Person) and
// private (LocalUser) writes are independent best-effort updates: a failure
// in either is logged and swallowed, an accepted inconsistency window. A new
// email is never committed directly; it goes through the verification
// workflow and lands on the account only once confirmed.
func (h *UpdateProfileHandler) Execute(ctx context.Context, user *LocalUserView, params UpdateProfileParams) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during profile update",
		)
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	params.Email = EmptyToNil(params.Email)

	// clearing is always allowed, so only a non-blank name is validated
	if err := ValidateDisplayName(EmptyToNil(params.DisplayName)); err != nil {
		return err
	}

	personForm := &PersonUpdateForm{
		DisplayName: params.DisplayName,
		Bio:         params.Bio,
	}
	if err := h.repo.Users().UpdatePerson(ctx, personForm, user.Person.ID); err != nil {
		h.logger.Warn("person profile update failed", "person", user.Person.ID.String(), "error", err)
	}

	localUserForm := &LocalUserUpdateForm{
		EmailNotifications: params.EmailNotifications,
	}
	if err := h.repo.Users().UpdateLocalUser(ctx, localUserForm, user.LocalUser.ID); err != nil {
		h.logger.Warn("local user update failed", "user", user.LocalUser.ID.String(), "error", err)
	}

	if params.Email != nil {
		return h.verification.Request(ctx, RequestEmailVerificationMessage{
			LocalUserID:  user.LocalUser.ID,
			PendingEmail: *params.Email,
		})
	}

	return nil
}
