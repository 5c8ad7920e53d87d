package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHashService implements ports.HashService using bcrypt.
type BcryptHashService struct {
	cost int
}

// NewBcryptHashService creates a bcrypt hasher. A cost outside bcrypt's
// valid range falls back to the library default.
func NewBcryptHashService(cost int) *BcryptHashService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHashService{cost: cost}
}

// Hash derives a bcrypt hash from a plaintext password.
func (s *BcryptHashService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the plaintext password matches the stored
// hash. A mismatch is a false result, not an error; errors mean the
// stored hash itself is malformed.
func (s *BcryptHashService) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("comparing password hash: %w", err)
}
