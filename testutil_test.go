package auth_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/loreleaf/go-auth"
)

const testSchema = `
CREATE TABLE person (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    domain TEXT NOT NULL,
    display_name TEXT,
    bio TEXT,
    local BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP
);
CREATE TABLE local_user (
    id TEXT PRIMARY KEY,
    person_id TEXT NOT NULL REFERENCES person (id),
    password_hash TEXT,
    email TEXT,
    email_verified BOOLEAN NOT NULL DEFAULT FALSE,
    email_notifications BOOLEAN NOT NULL DEFAULT FALSE,
    admin BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP
);
CREATE TABLE password_reset_request (
    id TEXT PRIMARY KEY,
    token TEXT NOT NULL UNIQUE,
    local_user_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    expires_at TIMESTAMP NOT NULL
);
CREATE TABLE email_verification_token (
    id TEXT PRIMARY KEY,
    token TEXT NOT NULL UNIQUE,
    local_user_id TEXT NOT NULL,
    pending_email TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    expires_at TIMESTAMP NOT NULL
);
CREATE TABLE notification (
    id TEXT PRIMARY KEY,
    recipient_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    "read" BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE instance (
    id TEXT PRIMARY KEY,
    domain TEXT NOT NULL UNIQUE
);
CREATE TABLE instance_follow (
    id TEXT PRIMARY KEY,
    person_id TEXT NOT NULL,
    instance_id TEXT NOT NULL,
    pending BOOLEAN NOT NULL DEFAULT FALSE
);
`

func setupTestRepo(t *testing.T) auth.RepositoryManager {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec(testSchema)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = db.Close()
	})

	repo := auth.NewRepositoryManager(bunDB)
	repo.MustValidate()

	return repo
}

func testConfig() auth.ConfigObject {
	return auth.ConfigObject{
		SigningSecret: "test-signing-secret",
		Domain:        "wiki.example.org",
		EmailRequired: false,
		Development:   false,
	}
}

type testAccount struct {
	Username string
	Email    string
	Password string
	Verified bool
}

func createTestUser(t *testing.T, repo auth.RepositoryManager, acct testAccount) *auth.LocalUserView {
	t.Helper()

	hash, err := auth.HashPassword(acct.Password)
	require.NoError(t, err)

	person := &auth.Person{
		Username: acct.Username,
		Domain:   "wiki.example.org",
	}
	user := &auth.LocalUser{
		PasswordHash:  &hash,
		Email:         &acct.Email,
		EmailVerified: acct.Verified,
	}

	view, err := repo.Users().CreateLocal(context.Background(), person, user)
	require.NoError(t, err)

	return view
}

type sentMail struct {
	Email string
	Token string
}

// recordingMailer captures outbound mail instead of delivering it.
type recordingMailer struct {
	mu            sync.Mutex
	Resets        []sentMail
	Verifications []sentMail
}

func (m *recordingMailer) SendResetEmail(ctx context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resets = append(m.Resets, sentMail{Email: email, Token: token})
	return nil
}

func (m *recordingMailer) SendVerificationEmail(ctx context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Verifications = append(m.Verifications, sentMail{Email: email, Token: token})
	return nil
}

func (m *recordingMailer) lastReset(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.Resets)
	return m.Resets[len(m.Resets)-1]
}

func (m *recordingMailer) lastVerification(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.Verifications)
	return m.Verifications[len(m.Verifications)-1]
}

func seedNotification(t *testing.T, repo auth.RepositoryManager, recipient uuid.UUID, kind auth.NotificationKind, read bool) *auth.Notification {
	t.Helper()

	record := &auth.Notification{
		ID:          uuid.New(),
		RecipientID: recipient,
		Kind:        kind,
		Read:        read,
	}

	created, err := repo.Notifications().Create(context.Background(), record)
	require.NoError(t, err)

	return created
}
