package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Person is the public identity record. It exists for every known actor,
// local or remote, and never carries credentials: auth-relevant fields live
// on LocalUser so profile-read paths cannot leak them.
type Person struct {
	bun.BaseModel `bun:"table:person,alias:p"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull" json:"username"`
	Domain        string     `bun:"domain,notnull" json:"domain"`
	DisplayName   *string    `bun:"display_name,nullzero" json:"display_name,omitempty"`
	Bio           *string    `bun:"bio,nullzero" json:"bio,omitempty"`
	Local         bool       `bun:"local,notnull" json:"local"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// LocalUser holds the private half of a local account.
type LocalUser struct {
	bun.BaseModel      `bun:"table:local_user,alias:lu"`
	ID                 uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PersonID           uuid.UUID  `bun:"person_id,notnull,type:uuid" json:"-"`
	Person             *Person    `bun:"rel:belongs-to,join:person_id=id" json:"-"`
	PasswordHash       *string    `bun:"password_hash,nullzero" json:"-"`
	Email              *string    `bun:"email,nullzero" json:"email,omitempty"`
	EmailVerified      bool       `bun:"email_verified,notnull" json:"email_verified"`
	EmailNotifications bool       `bun:"email_notifications,notnull" json:"email_notifications"`
	Admin              bool       `bun:"admin,notnull" json:"admin"`
	CreatedAt          *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt          *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// LocalUserView pairs the public and private halves of an account. It is the
// resolved identity for every authenticated request and the login response
// payload; PasswordHash stays out of the JSON either way.
type LocalUserView struct {
	Person    Person    `json:"person"`
	LocalUser LocalUser `json:"local_user"`
}

// PasswordResetRequest is a single-use, time-bounded reset token. Consumption
// is a transactional delete-returning: after it succeeds once the row is
// gone and the token can never resolve again.
type PasswordResetRequest struct {
	bun.BaseModel `bun:"table:password_reset_request,alias:prr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"-"`
	LocalUserID   uuid.UUID  `bun:"local_user_id,notnull,type:uuid" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at"`
}

// EmailVerificationToken binds a pending address to an account until the
// owner proves control of the mailbox. Consumed exactly once.
type EmailVerificationToken struct {
	bun.BaseModel `bun:"table:email_verification_token,alias:evt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"-"`
	LocalUserID   uuid.UUID  `bun:"local_user_id,notnull,type:uuid" json:"-"`
	PendingEmail  string     `bun:"pending_email,notnull" json:"pending_email"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at"`
}

// NotificationKind labels what a notification is about.
type NotificationKind = string

const (
	NotificationEditArticle    NotificationKind = "edit_article"
	NotificationNewArticle     NotificationKind = "new_article"
	NotificationComment        NotificationKind = "comment"
	NotificationEditConflict   NotificationKind = "edit_conflict"
	NotificationFollowAccepted NotificationKind = "follow_accepted"
)

// Notification is produced by external event sources; this subsystem only
// tracks read state for the owning recipient.
type Notification struct {
	bun.BaseModel `bun:"table:notification,alias:n"`
	ID            uuid.UUID        `bun:"id,pk,nullzero,type:uuid" json:"id"`
	RecipientID   uuid.UUID        `bun:"recipient_id,notnull,type:uuid" json:"-"`
	Kind          NotificationKind `bun:"kind,notnull" json:"kind"`
	Read          bool             `bun:"read,notnull" json:"read"`
	CreatedAt     *time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Instance is a remote (or the local) server in the federation.
type Instance struct {
	bun.BaseModel `bun:"table:instance,alias:i"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Domain        string    `bun:"domain,notnull,unique" json:"domain"`
}

// InstanceFollow records that a person follows a federation instance.
// Written by the federation layer; read-only here.
type InstanceFollow struct {
	bun.BaseModel `bun:"table:instance_follow,alias:ifl"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"-"`
	PersonID      uuid.UUID `bun:"person_id,notnull,type:uuid" json:"-"`
	InstanceID    uuid.UUID `bun:"instance_id,notnull,type:uuid" json:"-"`
	Instance      *Instance `bun:"rel:belongs-to,join:instance_id=id" json:"instance,omitempty"`
	Pending       bool      `bun:"pending,notnull" json:"pending"`
}

// SuccessResponse is the empty-success payload shared by mutating endpoints.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// NewSuccessResponse returns the canonical success payload.
func NewSuccessResponse() SuccessResponse {
	return SuccessResponse{Success: true}
}
