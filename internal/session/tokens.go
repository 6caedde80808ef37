package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer     = "chefmenu"
	defaultTokenTTL = 12 * time.Hour
)

// ErrInvalidToken covers malformed, forged and expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Tokens issues and verifies HS256 bearer tokens naming a logged-in user.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a token service signing with secret. A non-positive ttl
// uses twelve hours.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL reports how long issued tokens stay valid.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue signs a token for a logged-in session.
func (t *Tokens) Issue(s *Session) (string, error) {
	if err := s.RequireLogin(); err != nil {
		return "", err
	}
	now := t.now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   s.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks a token and rebuilds the logged-in Session it stands for.
func (t *Tokens) Verify(raw string) (Session, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Session{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return Session{LoggedIn: true, Username: claims.Subject}, nil
}
