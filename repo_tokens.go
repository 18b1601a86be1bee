package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type passwordResets struct {
	repository.Repository[*PasswordResetRequest]
	db *bun.DB
}

var _ PasswordResets = (*passwordResets)(nil)

func NewPasswordResetsRepository(db *bun.DB) PasswordResets {
	handlers := repository.ModelHandlers[*PasswordResetRequest]{
		NewRecord: func() *PasswordResetRequest {
			return &PasswordResetRequest{}
		},
		GetID: func(record *PasswordResetRequest) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *PasswordResetRequest, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "token"
		},
	}

	return &passwordResets{
		Repository: repository.NewRepository(db, handlers),
		db:         db,
	}
}

func (r *passwordResets) ConsumeTx(ctx context.Context, tx bun.IDB, token string) (*PasswordResetRequest, error) {
	record := &PasswordResetRequest{}

	// Single DELETE .. RETURNING: the read and the delete cannot be split,
	// so two concurrent completions of the same token cannot both succeed.
	err := tx.NewDelete().
		Model(record).
		Where("token = ?", token).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResetTokenInvalid
		}
		return nil, err
	}

	return record, nil
}

type emailVerifications struct {
	repository.Repository[*EmailVerificationToken]
	db *bun.DB
}

var _ EmailVerifications = (*emailVerifications)(nil)

func NewEmailVerificationsRepository(db *bun.DB) EmailVerifications {
	handlers := repository.ModelHandlers[*EmailVerificationToken]{
		NewRecord: func() *EmailVerificationToken {
			return &EmailVerificationToken{}
		},
		GetID: func(record *EmailVerificationToken) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *EmailVerificationToken, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "token"
		},
	}

	return &emailVerifications{
		Repository: repository.NewRepository(db, handlers),
		db:         db,
	}
}

func (r *emailVerifications) ConsumeTx(ctx context.Context, tx bun.IDB, token string) (*EmailVerificationToken, error) {
	record := &EmailVerificationToken{}

	err := tx.NewDelete().
		Model(record).
		Where("token = ?", token).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVerificationTokenInvalid
		}
		return nil, err
	}

	return record, nil
}
