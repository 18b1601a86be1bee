package auth

import (
	"context"
	"net/mail"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UpdateUserPasswordSQL swaps the stored hash and flips email_verified: a
// completed reset proves the caller controls the account's mailbox.
var UpdateUserPasswordSQL = `UPDATE "local_user" AS "lu"
SET
	"email_verified" = TRUE,
	"password_hash" = ?
WHERE
	"lu"."id" = ?
RETURNING *;`

// PersonUpdateForm carries the public profile mutation. A nil field is left
// unchanged; a blank value clears the column to NULL.
type PersonUpdateForm struct {
	DisplayName *string
	Bio         *string
}

// LocalUserUpdateForm carries the private account mutation.
type LocalUserUpdateForm struct {
	EmailNotifications *bool
}

// Users resolves identities and mutates account records.
type Users interface {
	repository.Repository[*LocalUser]

	// GetByNameOrEmail resolves a login identifier to the full account
	// view, matching the local username first and the account email second.
	GetByNameOrEmail(ctx context.Context, identifier string) (*LocalUserView, error)
	GetByNameOrEmailTx(ctx context.Context, tx bun.IDB, identifier string) (*LocalUserView, error)

	GetByLocalUserID(ctx context.Context, id uuid.UUID) (*LocalUserView, error)

	// GetPerson reads a public profile by username and domain. It never
	// touches local_user, so credentials cannot leak through it.
	GetPerson(ctx context.Context, name, domain string) (*Person, error)

	ListFollows(ctx context.Context, personID uuid.UUID) ([]*InstanceFollow, error)

	CreateLocal(ctx context.Context, person *Person, user *LocalUser) (*LocalUserView, error)

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error

	UpdatePerson(ctx context.Context, form *PersonUpdateForm, personID uuid.UUID) error
	UpdateLocalUser(ctx context.Context, form *LocalUserUpdateForm, id uuid.UUID) error

	CommitVerifiedEmailTx(ctx context.Context, tx bun.IDB, id uuid.UUID, email string) error
}

type users struct {
	repository.Repository[*LocalUser]
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*LocalUser](db, repository.ModelHandlers[*LocalUser]{
		NewRecord: func() *LocalUser { return &LocalUser{} },
		GetID: func(u *LocalUser) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *LocalUser, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByNameOrEmail(ctx context.Context, identifier string) (*LocalUserView, error) {
	return a.GetByNameOrEmailTx(ctx, a.db, identifier)
}

func (a *users) GetByNameOrEmailTx(ctx context.Context, tx bun.IDB, identifier string) (*LocalUserView, error) {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return nil, repository.NewRecordNotFound()
	}

	columns := []string{"person.username"}
	if isEmail(trimmed) {
		// email comparison is case-insensitive; addresses are stored lowercase
		trimmed = strings.ToLower(trimmed)
		columns = append(columns, "lu.email")
	}

	for _, column := range columns {
		view, err := a.scanView(ctx, tx, column, trimmed)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}
		return view, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{
			"identifier": identifier,
		})
}

func (a *users) GetByLocalUserID(ctx context.Context, id uuid.UUID) (*LocalUserView, error) {
	return a.scanView(ctx, a.db, "lu.id", id.String())
}

func (a *users) scanView(ctx context.Context, tx bun.IDB, column, value string) (*LocalUserView, error) {
	user := &LocalUser{}

	err := tx.NewSelect().
		Model(user).
		Relation("Person").
		Where("? = ?", bun.Safe(column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	if user.Person == nil {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"local_user_id": user.ID.String(),
			})
	}

	view := &LocalUserView{Person: *user.Person, LocalUser: *user}
	view.LocalUser.Person = nil

	return view, nil
}

func (a *users) GetPerson(ctx context.Context, name, domain string) (*Person, error) {
	person := &Person{}

	err := a.db.NewSelect().
		Model(person).
		Where("p.username = ?", name).
		Where("p.domain = ?", domain).
		Limit(1).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return person, nil
}

func (a *users) ListFollows(ctx context.Context, personID uuid.UUID) ([]*InstanceFollow, error) {
	follows := []*InstanceFollow{}

	err := a.db.NewSelect().
		Model(&follows).
		Relation("Instance").
		Where("ifl.person_id = ?", personID).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return follows, nil
}

func (a *users) CreateLocal(ctx context.Context, person *Person, user *LocalUser) (*LocalUserView, error) {
	if person.ID == uuid.Nil {
		person.ID = uuid.New()
	}
	person.Local = true

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.PersonID = person.ID

	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(person).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(user).Exec(ctx)
		return err
	})

	if err != nil {
		return nil, err
	}

	return &LocalUserView{Person: *person, LocalUser: *user}, nil
}

func (a *users) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.UpdatePasswordTx(ctx, a.db, id, passwordHash)
}

func (a *users) UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	// Scan the RETURNING rows instead of trusting RowsAffected, which the
	// sqlite driver does not report reliably for RETURNING statements.
	res, err := a.Repository.RawTx(ctx, tx, UpdateUserPasswordSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *users) UpdatePerson(ctx context.Context, form *PersonUpdateForm, personID uuid.UUID) error {
	q := a.db.NewUpdate().
		Model((*Person)(nil)).
		Where("id = ?", personID)

	touched := false
	if form.DisplayName != nil {
		q = q.Set("display_name = ?", EmptyToNil(form.DisplayName))
		touched = true
	}
	if form.Bio != nil {
		q = q.Set("bio = ?", EmptyToNil(form.Bio))
		touched = true
	}

	if !touched {
		return nil
	}

	_, err := q.Exec(ctx)
	return err
}

func (a *users) UpdateLocalUser(ctx context.Context, form *LocalUserUpdateForm, id uuid.UUID) error {
	if form.EmailNotifications == nil {
		return nil
	}

	_, err := a.db.NewUpdate().
		Model((*LocalUser)(nil)).
		Set("email_notifications = ?", *form.EmailNotifications).
		Where("id = ?", id).
		Exec(ctx)

	return err
}

func (a *users) CommitVerifiedEmailTx(ctx context.Context, tx bun.IDB, id uuid.UUID, email string) error {
	res, err := tx.NewUpdate().
		Model((*LocalUser)(nil)).
		Set("email = ?", email).
		Set("email_verified = ?", true).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func isEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
