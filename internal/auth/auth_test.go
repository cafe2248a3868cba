package auth

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCredentials(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCredentials(t *testing.T) {
	path := writeCredentials(t, "admin@example.com: password123\nuser@example.com: userpass\n")

	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Len(t, creds, 2)
	assert.Equal(t, "password123", creds["admin@example.com"])
}

func TestLoadCredentialsErrors(t *testing.T) {
	_, err := LoadCredentials("")
	assert.Error(t, err)

	_, err = LoadCredentials(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadCredentials(writeCredentials(t, "{}\n"))
	assert.Error(t, err, "empty mapping must be rejected")

	_, err = LoadCredentials(writeCredentials(t, "not: [valid: mapping\n"))
	assert.Error(t, err)
}

func TestAuthenticateExactMatch(t *testing.T) {
	creds := Credentials{"admin@example.com": "password123"}

	assert.True(t, creds.Authenticate("admin@example.com", "password123"))

	// Altering either field flips the result.
	assert.False(t, creds.Authenticate("admin@example.com", "password124"))
	assert.False(t, creds.Authenticate("Admin@example.com", "password123"))
	assert.False(t, creds.Authenticate("admin@example.com", "Password123"))
	assert.False(t, creds.Authenticate("", ""))
	assert.False(t, creds.Authenticate("other@example.com", "password123"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "admin", DisplayName("admin@example.com"))
	assert.Equal(t, "local", DisplayName("local"))
	assert.Equal(t, "", DisplayName("@example.com"))
}

func TestSessionLifecycle(t *testing.T) {
	store := NewSessionStore(false)

	sess := store.Create()
	require.NotEmpty(t, sess.Token)
	assert.False(t, sess.Authenticated)

	store.Login(sess, "user@example.com")
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "user", sess.Identity)
	require.Same(t, sess, store.Get(sess.Token))

	store.Logout(sess.Token)
	assert.False(t, sess.Authenticated)
	assert.Nil(t, store.Get(sess.Token))

	// Logout is idempotent.
	store.Logout(sess.Token)
	store.Logout("no-such-token")
}

func TestSessionCookieRoundTrip(t *testing.T) {
	store := NewSessionStore(false)
	sess := store.Create()

	rec := httptest.NewRecorder()
	store.SetCookie(rec, sess)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	require.Same(t, sess, store.FromRequest(req))

	// A request without the cookie resolves to no session.
	assert.Nil(t, store.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil)))
}
