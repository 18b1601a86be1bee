package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/loreleaf/go-auth"
)

func TestLoginRoundTrip(t *testing.T) {
	repo := setupTestRepo(t)
	cfg := testConfig()
	auther := auth.NewAuthenticator(repo, cfg)

	createTestUser(t, repo, testAccount{
		Username: "alice",
		Email:    "alice@example.org",
		Password: "hunter2hunter2",
	})

	ctx := context.Background()

	user, token, err := auther.Login(ctx, "alice", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "alice", user.Person.Username)

	resolved, err := auther.LocalUserFromToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.LocalUser.ID, resolved.LocalUser.ID)
}

func TestLoginByEmail(t *testing.T) {
	repo := setupTestRepo(t)
	auther := auth.NewAuthenticator(repo, testConfig())

	createTestUser(t, repo, testAccount{
		Username: "alice",
		Email:    "alice@example.org",
		Password: "hunter2hunter2",
	})

	ctx := context.Background()

	user, _, err := auther.Login(ctx, "alice@example.org", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Person.Username)

	// identifier matching is case-insensitive for email
	user, _, err = auther.Login(ctx, "Alice@Example.ORG", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Person.Username)
}

func TestLoginFailuresAreUndifferentiated(t *testing.T) {
	repo := setupTestRepo(t)
	auther := auth.NewAuthenticator(repo, testConfig())

	createTestUser(t, repo, testAccount{
		Username: "alice",
		Email:    "alice@example.org",
		Password: "hunter2hunter2",
	})

	ctx := context.Background()

	_, _, err := auther.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidLogin)

	_, _, err = auther.Login(ctx, "nobody", "hunter2hunter2")
	assert.ErrorIs(t, err, auth.ErrInvalidLogin)
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	repo := setupTestRepo(t)
	cfg := testConfig()
	cfg.EmailRequired = true
	auther := auth.NewAuthenticator(repo, cfg)

	createTestUser(t, repo, testAccount{
		Username: "alice",
		Email:    "alice@example.org",
		Password: "hunter2hunter2",
		Verified: false,
	})
	createTestUser(t, repo, testAccount{
		Username: "bob",
		Email:    "bob@example.org",
		Password: "hunter2hunter2",
		Verified: true,
	})

	ctx := context.Background()

	_, _, err := auther.Login(ctx, "alice", "hunter2hunter2")
	assert.ErrorIs(t, err, auth.ErrEmailNotVerified)

	// the gate runs before the password check
	_, _, err = auther.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrEmailNotVerified)

	_, _, err = auther.Login(ctx, "bob", "hunter2hunter2")
	assert.NoError(t, err)
}

func TestLocalUserFromTokenFailures(t *testing.T) {
	repo := setupTestRepo(t)
	cfg := testConfig()
	auther := auth.NewAuthenticator(repo, cfg)

	ctx := context.Background()

	_, err := auther.LocalUserFromToken(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	// a well-formed token whose subject no longer exists
	orphan, err := auther.TokenService().Issue("deleted-user")
	require.NoError(t, err)

	_, err = auther.LocalUserFromToken(ctx, orphan)
	assert.ErrorIs(t, err, auth.ErrUnknownSubject)
}

func TestChangePassword(t *testing.T) {
	repo := setupTestRepo(t)
	cfg := testConfig()
	auther := auth.NewAuthenticator(repo, cfg)

	createTestUser(t, repo, testAccount{
		Username: "alice",
		Email:    "alice@example.org",
		Password: "old-password",
	})

	ctx := context.Background()

	user, _, err := auther.Login(ctx, "alice", "old-password")
	require.NoError(t, err)

	t.Run("wrong old password", func(t *testing.T) {
		err := auther.ChangePassword(ctx, user, "not-the-old-one", "new-password", "new-password")
		assert.ErrorIs(t, err, auth.ErrInvalidLogin)
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		err := auther.ChangePassword(ctx, user, "old-password", "new-password", "different")
		assert.ErrorIs(t, err, auth.ErrPasswordMismatch)
	})

	t.Run("weak replacement", func(t *testing.T) {
		err := auther.ChangePassword(ctx, user, "old-password", "short", "short")
		assert.ErrorIs(t, err, auth.ErrPasswordTooWeak)
	})

	t.Run("success", func(t *testing.T) {
		err := auther.ChangePassword(ctx, user, "old-password", "new-password", "new-password")
		require.NoError(t, err)

		_, _, err = auther.Login(ctx, "alice", "old-password")
		assert.ErrorIs(t, err, auth.ErrInvalidLogin)

		_, _, err = auther.Login(ctx, "alice", "new-password")
		assert.NoError(t, err)
	})
}
