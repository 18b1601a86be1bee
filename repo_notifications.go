package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type notifications struct {
	repository.Repository[*Notification]
	db *bun.DB
}

var _ Notifications = (*notifications)(nil)

func NewNotificationsRepository(db *bun.DB) Notifications {
	handlers := repository.ModelHandlers[*Notification]{
		NewRecord: func() *Notification {
			return &Notification{}
		},
		GetID: func(record *Notification) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Notification, id uuid.UUID) {
			record.ID = id
		},
	}

	return &notifications{
		Repository: repository.NewRepository(db, handlers),
		db:         db,
	}
}

func (r *notifications) ListForRecipient(ctx context.Context, recipientID uuid.UUID) ([]*Notification, error) {
	records := []*Notification{}

	err := r.db.NewSelect().
		Model(&records).
		Where("n.recipient_id = ?", recipientID).
		Order("n.created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *notifications) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	count, err := r.db.NewSelect().
		Model((*Notification)(nil)).
		Where("n.recipient_id = ?", recipientID).
		Where("n.read = ?", false).
		Count(ctx)

	if err != nil {
		return 0, err
	}

	return int64(count), nil
}

func (r *notifications) MarkRead(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*Notification)(nil)).
		Set("read = ?", true).
		Where("id = ?", id).
		Exec(ctx)

	return err
}
