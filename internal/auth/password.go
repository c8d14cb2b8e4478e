package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a password does not match its hash.
var ErrPasswordMismatch = errors.New("auth: password mismatch")

const minPasswordLength = 8

// HashPassword derives a bcrypt hash for storage.
func HashPassword(plain string) (string, error) {
	if len(plain) < minPasswordLength {
		return "", errors.New("auth: password too short")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a stored bcrypt hash against a candidate password.
func VerifyPassword(hash, plain string) error {
	if hash == "" {
		return ErrPasswordMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
