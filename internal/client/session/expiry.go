package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry reads the exp claim of a JWT without verifying its signature;
// the client has no key and only uses it to avoid sending a dead token.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// ExpiresAt returns the expiry of the current token if it is a JWT with an
// exp claim.
func (m *Manager) ExpiresAt() (time.Time, bool) {
	token := m.Token()
	if token == "" {
		return time.Time{}, false
	}
	return tokenExpiry(token)
}

// IsExpired reports whether the current token expires within the configured
// buffer. Tokens that are not JWTs never expire locally.
func (m *Manager) IsExpired() bool {
	exp, ok := m.ExpiresAt()
	if !ok {
		return false
	}
	return !m.now().Add(m.expiryBuffer).Before(exp)
}

// EnsureFresh refreshes the token when it is about to expire. When the
// refresh request fails the session is dropped with ForceReauth, so observers
// know credentials are needed again.
func (m *Manager) EnsureFresh(ctx context.Context) error {
	if !m.IsLoggedIn() || !m.IsExpired() {
		return nil
	}
	m.log.Debug(ctx, "token close to expiry, refreshing")
	callFailed, err := m.renew(ctx)
	if callFailed {
		m.ForceReauth(ctx)
	}
	return err
}
