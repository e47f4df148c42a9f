package session

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smforson1/book-bite-sub000/internal/client/models"
	"github.com/smforson1/book-bite-sub000/internal/client/storage"
	"github.com/smforson1/book-bite-sub000/internal/logging"

	_ "modernc.org/sqlite"
)

func setupManager(t *testing.T) *Manager {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE storage (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewManager(storage.New(db, log), log)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestBeginTokenUser_RoundTrip(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	require.True(t, m.Begin(ctx, "tok-1", &models.User{ID: "u1", Name: "Ama"}))

	assert.Equal(t, "tok-1", m.Token(ctx))
	u := m.CurrentUser(ctx)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.ID)
}

func TestActive_NoToken_False(t *testing.T) {
	m := setupManager(t)
	assert.False(t, m.Active(context.Background()))
}

func TestActive_ValidJWT_True(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	require.True(t, m.Begin(ctx, signedToken(t, time.Now().Add(time.Hour)), nil))
	assert.True(t, m.Active(ctx))
}

func TestActive_ExpiredJWT_False(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	require.True(t, m.Begin(ctx, signedToken(t, time.Now().Add(-time.Hour)), nil))
	assert.False(t, m.Active(ctx))
}

func TestActive_OpaqueToken_True(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	require.True(t, m.Begin(ctx, "not-a-jwt", nil))
	assert.True(t, m.Active(ctx))
}

func TestEnd_WipesSession(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	require.True(t, m.Begin(ctx, "tok-1", &models.User{ID: "u1"}))
	m.End(ctx)

	assert.Equal(t, "", m.Token(ctx))
	assert.Nil(t, m.CurrentUser(ctx))
	assert.False(t, m.Active(ctx))
}
