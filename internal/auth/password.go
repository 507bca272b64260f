package auth

import (
	"errors"
	"fmt"

	"ms-cinema/internal/errs"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errs.New(errs.KindAuth, "invalid email or password")

// HashPassword hashes password with bcrypt. Costs outside bcrypt's range
// fall back to the default cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return errs.Wrap(errs.KindAuth, ErrInvalidCredentials.Message, err)
	}
	return nil
}
