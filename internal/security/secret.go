package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidSecret = errors.New("invalid password")

// SecretChecker verifies a candidate against a shared operator secret.
type SecretChecker interface {
	Check(candidate string) error
}

type bcryptChecker struct {
	hash []byte
}

// NewSecretChecker hashes secret once at startup so the plaintext is not
// retained and comparisons do not leak timing.
func NewSecretChecker(secret string) (SecretChecker, error) {
	if secret == "" {
		return nil, errors.New("secret must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}
	return &bcryptChecker{hash: hash}, nil
}

func (c *bcryptChecker) Check(candidate string) error {
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(candidate)); err != nil {
		return ErrInvalidSecret
	}
	return nil
}
