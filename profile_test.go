package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/loreleaf/go-auth"
)

func TestUpdateProfileSetsAndClearsFields(t *testing.T) {
	repo := setupTestRepo(t)
	handler := auth.NewUpdateProfileHandler(repo)

	view := createTestUser(t, repo, testAccount{
		Username: "alice",
		Email:    "alice@example.org",
		Password: "hunter2hunter2",
	})

	ctx := context.Background()

	err := handler.Execute(ctx, view, auth.UpdateProfileParams{
		DisplayName: strptr("Alice M"),
		Bio:         strptr("wiki gardener"),
	})
	require.NoError(t, err)

	updated, err := repo.Users().GetByLocalUserID(ctx, view.LocalUser.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Person.DisplayName)
	assert.Equal(t, "Alice M", *updated.Person.DisplayName)
	require.NotNil(t, updated.Person.Bio)
	assert.Equal(t, "wiki gardener", *updated.Person.Bio)

	// blank input clears; cleared fields are stored as NULL, not ""
	err = handler.Execute(ctx, updated, auth.UpdateProfileParams{
		DisplayName: strptr(""),
		Bio:         strptr("   "),
	})
	require.NoError(t, err)

	cleared, err := repo.Users().GetByLocalUserID(ctx, view.LocalUser.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.Person.DisplayName)
	assert.Nil(t, cleared.Person.Bio)
}

func TestUpdateProfileOmittedFieldsAreUntouched(t *testing.T) {
	repo := setupTestRepo(t)
	handler := auth.NewUpdateProfileHandler(repo)

	view := createTestUser(t, repo, testAccount{
		Username: "alice",
		Email:    "alice@example.org",
		Password: "hunter2hunter2",
	})

	ctx := context.Background()

	require.NoError(t, handler.Execute(ctx, view, auth.UpdateProfileParams{
		DisplayName: strptr("Alice M"),
		Bio:         strptr("wiki gardener"),
	}))

	// a mutation carrying only the notification preference must not wipe
	// the text fields it omits
	on := true
	require.NoError(t, handler.Execute(ctx, view, auth.UpdateProfileParams{
		EmailNotifications: &on,
	}))

	current, err := repo.Users().GetByLocalUserID(ctx, view.LocalUser.ID)
	require.NoError(t, err)
	require.NotNil(t, current.Person.DisplayName)
	assert.Equal(t, "Alice M", *current.Person.DisplayName)
	require.NotNil(t, current.Person.Bio)
	assert.Equal(t, "wiki gardener", *current.Person.Bio)
	assert.True(t, current.LocalUser.EmailNotifications)
}

func TestUpdateProfileRejectsBadDisplayName(t *testing.T) {
	repo := setupTestRepo(t)
	handler := auth.NewUpdateProfileHandler(repo)

	view := createTestUser(t, repo, testAccount{
		Username: "alice",
		Email:    "alice@example.org",
		Password: "hunter2hunter2",
	})

	err := handler.Execute(context.Background(), view, auth.UpdateProfileParams{
		DisplayName: strptr("bad\nname"),
	})
	assert.ErrorIs(t, err, auth.ErrInvalidDisplayName)
}

func TestUpdateProfileEmailGoesThroughVerification(t *testing.T) {
	repo := setupTestRepo(t)
	mailer := &recordingMailer{}
	verification := auth.NewEmailVerificationHandler(repo).WithMailer(mailer)
	handler := auth.NewUpdateProfileHandler(repo).WithVerificationHandler(verification)

	view := createTestUser(t, repo, testAccount{
		Username: "alice",
		Email:    "old@example.org",
		Password: "hunter2hunter2",
		Verified: true,
	})

	ctx := context.Background()

	err := handler.Execute(ctx, view, auth.UpdateProfileParams{
		Email: strptr("new@example.org"),
	})
	require.NoError(t, err)

	assert.Equal(t, "new@example.org", mailer.lastVerification(t).Email)

	// the account email is unchanged until the token is confirmed
	current, err := repo.Users().GetByLocalUserID(ctx, view.LocalUser.ID)
	require.NoError(t, err)
	assert.Equal(t, "old@example.org", *current.LocalUser.Email)
}

func TestUpdateProfileEmailNotifications(t *testing.T) {
	repo := setupTestRepo(t)
	handler := auth.NewUpdateProfileHandler(repo)

	view := createTestUser(t, repo, testAccount{
		Username: "alice",
		Email:    "alice@example.org",
		Password: "hunter2hunter2",
	})

	ctx := context.Background()

	on := true
	require.NoError(t, handler.Execute(ctx, view, auth.UpdateProfileParams{EmailNotifications: &on}))

	updated, err := repo.Users().GetByLocalUserID(ctx, view.LocalUser.ID)
	require.NoError(t, err)
	assert.True(t, updated.LocalUser.EmailNotifications)

	off := false
	require.NoError(t, handler.Execute(ctx, updated, auth.UpdateProfileParams{EmailNotifications: &off}))

	updated, err = repo.Users().GetByLocalUserID(ctx, view.LocalUser.ID)
	require.NoError(t, err)
	assert.False(t, updated.LocalUser.EmailNotifications)
}
