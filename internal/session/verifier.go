package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptVerifier accepts a single configured username whose password is
// stored as a bcrypt hash.
type BcryptVerifier struct {
	username string
	hash     []byte
}

// NewBcryptVerifier validates the hash and returns a verifier for username.
func NewBcryptVerifier(username, hash string) (*BcryptVerifier, error) {
	if username == "" {
		return nil, errors.New("admin username is empty")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	return &BcryptVerifier{username: username, hash: []byte(hash)}, nil
}

// Verify compares the username case-sensitively and the password against
// the stored hash.
func (v *BcryptVerifier) Verify(ctx context.Context, username, password string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1
	err := bcrypt.CompareHashAndPassword(v.hash, []byte(password))
	switch {
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case err != nil:
		return false, err
	}
	return userOK, nil
}

// HashPassword returns a bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
