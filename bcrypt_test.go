package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/loreleaf/go-auth"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEqual(t, "correct horse battery staple", hash)

	user := &auth.LocalUser{PasswordHash: &hash}

	assert.NoError(t, auth.VerifyPassword(user, "correct horse battery staple"))
	assert.ErrorIs(t, auth.VerifyPassword(user, "wrong"), auth.ErrInvalidLogin)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := auth.HashPassword("")
	assert.Error(t, err)
}

func TestVerifyPasswordWithoutStoredHash(t *testing.T) {
	// federation-only accounts have no local password; login must fail the
	// same way a wrong password does
	assert.ErrorIs(t, auth.VerifyPassword(&auth.LocalUser{}, "anything"), auth.ErrInvalidLogin)
	assert.ErrorIs(t, auth.VerifyPassword(nil, "anything"), auth.ErrInvalidLogin)
}
