package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.toml")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token, "missing file means signed out")

	require.NoError(t, store.Save("abc.def.ghi"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `token = "abc.def.ghi"`)

	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing twice is fine")
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte("token = [unterminated"), 0o600))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = Open(store)
	assert.Error(t, err)
}

func TestSession_Lifecycle(t *testing.T) {
	store := &MemoryStore{}
	require.NoError(t, store.Save("persisted"))

	s, err := Open(store)
	require.NoError(t, err)
	assert.Equal(t, "persisted", s.Token(), "boot reads the stored token")
	assert.NoError(t, s.Require())

	require.NoError(t, s.Set("fresh"))
	stored, _ := store.Load()
	assert.Equal(t, "fresh", stored)

	require.NoError(t, s.Clear())
	assert.False(t, s.SignedIn())
	assert.ErrorIs(t, s.Require(), ErrNoToken)
	stored, _ = store.Load()
	assert.Empty(t, stored)

	assert.Error(t, s.Set("   "))
}

func TestSession_Claims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signedToken(t, jwt.MapClaims{
		"id":    "6650aa",
		"email": "user@example.com",
		"role":  "user",
		"exp":   exp.Unix(),
	})

	s, err := Open(nil)
	require.NoError(t, err)
	_, err = s.Claims()
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, s.Set(tok))
	c, err := s.Claims()
	require.NoError(t, err)

	assert.Equal(t, "6650aa", c.Subject)
	assert.Equal(t, "user@example.com", c.Email)
	assert.Equal(t, "user", c.Role)
	assert.True(t, c.ExpiresAt.Equal(exp))
	assert.False(t, c.Expired(time.Now()))
	assert.True(t, c.Expired(exp.Add(time.Minute)))
}

func TestSession_ClaimsGarbage(t *testing.T) {
	s, err := Open(nil)
	require.NoError(t, err)
	require.NoError(t, s.Set("not-a-jwt"))

	_, err = s.Claims()
	assert.Error(t, err)
}
