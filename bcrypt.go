package auth

import (
	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", goerrors.New("password must not be empty", goerrors.CategoryBadInput)
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(h), err
}

// VerifyPassword compares a plaintext password against a user's stored hash.
// A missing hash (federation-only account with no local password), a
// mismatch, and a comparison error all collapse to ErrInvalidLogin.
func VerifyPassword(user *LocalUser, password string) error {
	if user == nil || user.PasswordHash == nil {
		return ErrInvalidLogin
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidLogin
	}

	return nil
}
