package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// NotificationTracker associates notifications with an authenticated
// identity and tracks read state. Notifications themselves are produced by
// external event sources.
type NotificationTracker struct {
	repo   RepositoryManager
	logger Logger
}

// NewNotificationTracker returns a tracker over the given repositories.
func NewNotificationTracker(repo RepositoryManager) *NotificationTracker {
	return &NotificationTracker{
		repo:   repo,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the tracker.
func (t *NotificationTracker) WithLogger(logger Logger) *NotificationTracker {
	if logger != nil {
		t.logger = logger
	}
	return t
}

// List returns the caller's notifications, newest first.
func (t *NotificationTracker) List(ctx context.Context, user *LocalUserView) ([]*Notification, error) {
	records, err := t.repo.Notifications().ListForRecipient(ctx, user.LocalUser.ID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list notifications")
	}
	return records, nil
}

// Count returns the caller's unread count. Anonymous callers always see
// zero; the absence of an identity is not an error.
func (t *NotificationTracker) Count(ctx context.Context, user *LocalUserView) (int64, error) {
	if user == nil {
		return 0, nil
	}

	count, err := t.repo.Notifications().CountUnread(ctx, user.LocalUser.ID)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count notifications")
	}

	return count, nil
}

// MarkAsRead flips the read flag on one of the caller's notifications.
// A notification that does not exist and one that belongs to someone else
// fail identically, so the call leaks no existence information.
func (t *NotificationTracker) MarkAsRead(ctx context.Context, id uuid.UUID, user *LocalUserView) error {
	record, err := t.repo.Notifications().GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrNotOwner
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read notification")
	}

	if record.RecipientID != user.LocalUser.ID {
		return ErrNotOwner
	}

	if err := t.repo.Notifications().MarkRead(ctx, record.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark notification as read")
	}

	return nil
}
