package security

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/gignote/gignote-go/internal/errors"
)

// minPasswordLength matches the shortest password accepted at registration.
const minPasswordLength = 8

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", errors.Newf("password must be at least %d characters", minPasswordLength).
			Component("security").
			Category(errors.CategoryValidation).
			Build()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.New(err).
			Component("security").
			Category(errors.CategoryAuth).
			Build()
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
