// Package session holds the login gate that stands in front of destructive
// dish operations. Login state lives in a caller-owned Session; the dish
// repository never looks at it.
package session

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned for any failed attempt. It does not say
	// whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrLoginRequired is returned by Session.RequireLogin when nobody is logged in.
	ErrLoginRequired = errors.New("login required")
)

// Session is the login state of one caller.
type Session struct {
	LoggedIn bool
	Username string
}

// RequireLogin returns ErrLoginRequired unless the session is logged in.
func (s *Session) RequireLogin() error {
	if s == nil || !s.LoggedIn {
		return ErrLoginRequired
	}
	return nil
}

// CredentialVerifier decides whether a username/password pair is accepted.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (bool, error)
}

// Gate flips a Session to logged in when the verifier accepts the credentials.
type Gate struct {
	verifier CredentialVerifier
}

// NewGate returns a Gate backed by v.
func NewGate(v CredentialVerifier) *Gate {
	return &Gate{verifier: v}
}

// Attempt checks the credentials. On success the session is marked logged in
// for username; on mismatch the session is left logged out and
// ErrInvalidCredentials is returned. Verifier failures are returned wrapped.
func (g *Gate) Attempt(ctx context.Context, s *Session, username, password string) error {
	if s == nil {
		return errors.New("nil session")
	}
	if g == nil || g.verifier == nil {
		s.LoggedIn, s.Username = false, ""
		return ErrInvalidCredentials
	}
	ok, err := g.verifier.Verify(ctx, username, password)
	if err != nil {
		s.LoggedIn, s.Username = false, ""
		return fmt.Errorf("verify credentials: %w", err)
	}
	if !ok {
		s.LoggedIn, s.Username = false, ""
		return ErrInvalidCredentials
	}
	s.LoggedIn, s.Username = true, username
	return nil
}

// Logout clears the session.
func (g *Gate) Logout(s *Session) {
	if s == nil {
		return
	}
	s.LoggedIn, s.Username = false, ""
}
