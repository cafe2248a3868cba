package auth

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CookieName carries the session token between requests.
const CookieName = "foldpanel_session"

// Session is per-user state scoped to one browser session. It lives only in
// memory and is never persisted.
type Session struct {
	Token         string
	Authenticated bool
	Identity      string
	CreatedAt     time.Time
}

// SessionStore hands out and tracks sessions keyed by opaque tokens.
// Sessions have no expiry; they live until logout or process exit.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	secure   bool
}

// NewSessionStore creates an empty store. secure controls the cookie's
// Secure attribute.
func NewSessionStore(secure bool) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		secure:   secure,
	}
}

// Create registers a fresh unauthenticated session and returns it.
func (s *SessionStore) Create() *Session {
	sess := &Session{
		Token:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session for token, or nil if unknown.
func (s *SessionStore) Get(token string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[token]
}

// Login flips the session to authenticated and records the display identity.
func (s *SessionStore) Login(sess *Session, identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.Authenticated = true
	sess.Identity = DisplayName(identity)
}

// Logout resets the authenticated flag and drops the token. Idempotent:
// logging out an unknown or already logged-out token is a no-op.
func (s *SessionStore) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[token]; ok {
		sess.Authenticated = false
		sess.Identity = ""
		delete(s.sessions, token)
	}
}

// SetCookie writes the session cookie for sess on the response.
func (s *SessionStore) SetCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on the response.
func (s *SessionStore) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// FromRequest resolves the request's session cookie to a live session, or
// nil when the cookie is absent or stale.
func (s *SessionStore) FromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	return s.Get(cookie.Value)
}
