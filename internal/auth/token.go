package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/naveenspark/eventview/pkg/client"
	"github.com/naveenspark/eventview/pkg/domain"
)

// ErrNotSignedIn is returned by Current when no token is stored.
var ErrNotSignedIn = errors.New("not signed in")

// Session describes a stored token. The signature is not checked: only
// the server can do that, and it answers 401 when the token is no good.
type Session struct {
	Principal domain.Principal
	IssuedAt  time.Time
	ExpiresAt time.Time // zero when the token never expires
}

// Expired reports whether the token's exp claim has passed at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Inspect reads the principal and timestamps from a session token.
func Inspect(token string) (Session, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Session{}, fmt.Errorf("auth.Inspect: %w", err)
	}
	if claims.Subject == "" {
		return Session{}, errors.New("auth.Inspect: token has no subject")
	}
	s := Session{Principal: domain.Principal(claims.Subject)}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Current inspects the token held in store.
func Current(store Store) (Session, error) {
	tok, err := store.Get(client.StorageKeyToken)
	if err != nil {
		return Session{}, err
	}
	if tok == "" {
		return Session{}, ErrNotSignedIn
	}
	return Inspect(tok)
}
