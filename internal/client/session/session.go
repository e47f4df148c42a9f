// Package session keeps the authenticated user and their token in the
// durable store and answers whether a session is still usable. The sync
// engine and the live-update client both gate on it.
package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/smforson1/book-bite-sub000/internal/client/models"
	"github.com/smforson1/book-bite-sub000/internal/client/storage"
	"github.com/smforson1/book-bite-sub000/internal/logging"
)

type Manager struct {
	store *storage.Store
	log   logging.Logger
}

func NewManager(store *storage.Store, log logging.Logger) *Manager {
	return &Manager{store: store, log: log.With("component", "session")}
}

// Begin persists the session after a successful login. The token record is
// integrity-protected.
func (m *Manager) Begin(ctx context.Context, token string, user *models.User) bool {
	if !m.store.SaveAuthToken(ctx, token) {
		return false
	}
	if user != nil && !m.store.SaveCurrentUser(ctx, user) {
		return false
	}
	return true
}

// Token re-reads the token from the store on every call: it may have been
// rotated by another component since the caller last looked.
func (m *Manager) Token(ctx context.Context) string {
	return m.store.AuthToken(ctx)
}

// CurrentUser returns the stored profile, or nil when logged out.
func (m *Manager) CurrentUser(ctx context.Context) *models.User {
	return m.store.CurrentUser(ctx)
}

// Active reports whether a usable session exists: a token is present and,
// when it is a JWT carrying an exp claim, that claim has not passed. Opaque
// tokens count as active; the backend is the authority on those.
func (m *Manager) Active(ctx context.Context) bool {
	token := m.Token(ctx)
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.After(time.Now())
}

// End wipes the session. Best-effort, like the store operations beneath it.
func (m *Manager) End(ctx context.Context) {
	if !m.store.Remove(ctx, storage.KeyAuthToken) {
		m.log.Warn(ctx, "failed to remove auth token")
	}
	if !m.store.Remove(ctx, storage.KeyUser) {
		m.log.Warn(ctx, "failed to remove stored user")
	}
}
