package handlers

import (
	"errors"
	"net/http"
	"strings"

	"foldpanel/internal/auth"
	"foldpanel/internal/metrics"
)

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identity string `json:"identity"`
		Secret   string `json:"secret"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Identity) == "" {
		respondError(w, http.StatusBadRequest, errors.New("identity is required"))
		return
	}

	if !h.creds.Authenticate(req.Identity, req.Secret) {
		metrics.LoginFailures.Inc()
		h.log.Warn().Str("identity", req.Identity).Msg("login rejected")
		respondError(w, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	sess := h.sessions.FromRequest(r)
	if sess == nil {
		sess = h.sessions.Create()
	}
	h.sessions.Login(sess, req.Identity)
	h.sessions.SetCookie(w, sess)

	h.log.Info().Str("identity", sess.Identity).Msg("login accepted")
	respondJSON(w, http.StatusOK, map[string]any{"identity": sess.Identity})
}

// handleLogout is idempotent: logging out without a session, or twice, still
// answers 204.
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.sessions.Logout(cookie.Value)
	}
	h.sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
