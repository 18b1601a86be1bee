package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	PasswordResets() PasswordResets
	EmailVerifications() EmailVerifications
	Notifications() Notifications
}

// PasswordResets stores single-use reset tokens. ConsumeTx is the only way
// a token leaves the table through this subsystem.
type PasswordResets interface {
	repository.Repository[*PasswordResetRequest]

	// ConsumeTx reads and deletes the request matching token as one
	// indivisible statement. Concurrent consumers of the same token get at
	// most one success; the rest see ErrResetTokenInvalid.
	ConsumeTx(ctx context.Context, tx bun.IDB, token string) (*PasswordResetRequest, error)
}

// EmailVerifications stores pending email/account bindings.
type EmailVerifications interface {
	repository.Repository[*EmailVerificationToken]

	ConsumeTx(ctx context.Context, tx bun.IDB, token string) (*EmailVerificationToken, error)
}

// Notifications reads and mutates notification read state.
type Notifications interface {
	repository.Repository[*Notification]

	ListForRecipient(ctx context.Context, recipientID uuid.UUID) ([]*Notification, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type mngr struct {
	db                 *bun.DB
	users              Users
	passwordResets     PasswordResets
	emailVerifications EmailVerifications
	notifications      Notifications
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:                 db,
		users:              NewUsersRepository(db),
		passwordResets:     NewPasswordResetsRepository(db),
		emailVerifications: NewEmailVerificationsRepository(db),
		notifications:      NewNotificationsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.passwordResets == nil {
		return errors.New("repository passwordResets should be initialized")
	}

	if m.emailVerifications == nil {
		return errors.New("repository emailVerifications should be initialized")
	}

	if m.notifications == nil {
		return errors.New("repository notifications should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) PasswordResets() PasswordResets {
	return m.passwordResets
}

func (m mngr) EmailVerifications() EmailVerifications {
	return m.emailVerifications
}

func (m mngr) Notifications() Notifications {
	return m.notifications
}
