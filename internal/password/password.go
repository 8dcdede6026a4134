// Package password contains utilities for checking password strength.
package password

import (
	"errors"
	"unicode"

	passwordvalidator "github.com/wagslane/go-password-validator"
)

const (
	minimumLength      = 10
	minimumEntropyBits = 60
)

var (
	ErrTooShort    = errors.New("password must be at least 10 characters long")
	ErrNoUppercase = errors.New("password must contain at least one uppercase letter")
	ErrNoLowercase = errors.New("password must contain at least one lowercase letter")
	ErrNoDigit     = errors.New("password must contain at least one digit")
	ErrTooWeak     = errors.New("password is too weak")
)

// Validate checks a candidate password against the local strength rules
// before it is ever sent to a collaborator.
func Validate(password string) error {
	if len(password) < minimumLength {
		return ErrTooShort
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return ErrNoUppercase
	}
	if !hasLower {
		return ErrNoLowercase
	}
	if !hasDigit {
		return ErrNoDigit
	}

	if err := passwordvalidator.Validate(password, minimumEntropyBits); err != nil {
		return errors.Join(ErrTooWeak, err)
	}
	return nil
}
