package auth

import (
	"errors"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// bcrypt truncates inputs past 72 bytes, so longer passwords add no entropy.
const maxPasswordLength = 72

// EmptyToNil collapses blank optional text to absent. An empty string is
// the only way a caller can clear a field, so "" and whitespace become nil
// before validation or persistence see them.
func EmptyToNil(value *string) *string {
	if value == nil {
		return nil
	}
	if strings.TrimSpace(*value) == "" {
		return nil
	}
	return value
}

// ValidateDisplayName checks an optional display name. Nil is valid; the
// empty string is not (Length alone would skip it).
func ValidateDisplayName(name *string) error {
	if name == nil {
		return nil
	}

	err := validation.Validate(*name,
		validation.Required,
		validation.Length(1, 50),
		validation.By(noControlCharacters),
	)
	if err != nil {
		return ErrInvalidDisplayName
	}

	return nil
}

// ValidateEmail checks address syntax.
func ValidateEmail(email string) error {
	err := validation.Validate(email,
		validation.Required,
		is.Email,
	)
	if err != nil {
		return ErrInvalidEmail
	}

	return nil
}

// ValidateNewPassword applies the shared password policy used by reset
// completion, password change, and registration. The confirmation check
// runs first so a mismatch is reported even for weak inputs.
func ValidateNewPassword(newPassword, confirmPassword string, cfg Config) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	minLength := DefaultMinPasswordLength
	if cfg != nil {
		minLength = cfg.GetMinPasswordLength()
	}

	if len(newPassword) < minLength || len(newPassword) > maxPasswordLength {
		return ErrPasswordTooWeak
	}

	return nil
}

func noControlCharacters(value any) error {
	s, _ := value.(string)
	for _, r := range s {
		if unicode.IsControl(r) {
			return errors.New("must not contain control characters")
		}
	}
	return nil
}
