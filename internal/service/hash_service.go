package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost of the hashes already present in the
// credentials file.
const bcryptCost = 10

// BcryptHashService implements ports.HashService using bcrypt.
type BcryptHashService struct{}

// NewBcryptHashService creates a new bcrypt hash service.
func NewBcryptHashService() *BcryptHashService {
	return &BcryptHashService{}
}

// Hash generates a bcrypt hash of the password.
func (s *BcryptHashService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Verify checks if a password matches the given bcrypt hash. A mismatch is
// not an error; errors mean the hash itself is malformed.
func (s *BcryptHashService) Verify(password string, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("verifying password: %w", err)
	}
	return true, nil
}
