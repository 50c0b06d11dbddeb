package auth

import (
	"crypto/subtle"
	"fmt"
	"unicode/utf8"

	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// DefaultPasswordMinLength is used when no policy length is configured.
const DefaultPasswordMinLength = 6

// PasswordPolicy validates new credential values.
type PasswordPolicy struct {
	MinLength int
}

// NewPasswordPolicy falls back to the default length for non-positive values.
func NewPasswordPolicy(minLength int) PasswordPolicy {
	if minLength <= 0 {
		minLength = DefaultPasswordMinLength
	}
	return PasswordPolicy{MinLength: minLength}
}

// Validate rejects empty or short passwords. Length is counted in characters.
func (p PasswordPolicy) Validate(password string) error {
	if password == "" {
		return apperrors.NewValidationError("password is required", map[string]any{"field": "password"})
	}
	if utf8.RuneCountInString(password) < p.MinLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", p.MinLength),
			map[string]any{"field": "password", "min_length": p.MinLength},
		)
	}
	return nil
}

// PasswordMatches compares credentials exactly in constant time.
func PasswordMatches(stored, given string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
