// Package handlers exposes the control panel's HTTP surface: credential
// gate, input staging, run streaming, and artifact browsing. Everything past
// login is gated by the session middleware.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"foldpanel/internal/auth"
	"foldpanel/internal/config"
	"foldpanel/internal/runner"
	"foldpanel/internal/staging"
	"foldpanel/internal/version"
)

// Handlers wires the service components behind the HTTP API.
type Handlers struct {
	cfg      config.Config
	creds    auth.Credentials
	sessions *auth.SessionStore
	stager   *staging.Stager
	runner   *runner.Runner
	log      zerolog.Logger
}

// New validates dependencies and returns the handler set.
func New(cfg config.Config, creds auth.Credentials, sessions *auth.SessionStore, stager *staging.Stager, run *runner.Runner, log zerolog.Logger) (*Handlers, error) {
	if len(creds) == 0 {
		return nil, errors.New("credentials are required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if stager == nil {
		return nil, errors.New("stager is required")
	}
	if run == nil {
		return nil, errors.New("runner is required")
	}

	return &Handlers{
		cfg:      cfg,
		creds:    creds,
		sessions: sessions,
		stager:   stager,
		runner:   run,
		log:      log,
	}, nil
}

// Routes constructs the chi router containing all endpoints.
func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	allowed := h.cfg.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Use(httprate.Limit(300, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", h.handleLogin)
		r.Post("/auth/logout", h.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(h.requireSession)

			r.Post("/inputs", h.handleStageInput)
			r.Post("/runs", h.handleRunStart)
			r.Get("/runs/current", h.handleRunCurrent)
			r.Get("/artifacts", h.handleCatalog)
			r.Get("/artifacts/preview", h.handlePreview)
			r.Get("/artifacts/download", h.handleDownload)
			r.Get("/artifacts/bundle", h.handleBundle)
			r.Get("/status", h.handleStatus)
		})
	})

	if h.cfg.OTLPEndpoint != "" {
		return otelhttp.NewHandler(r, version.Name)
	}
	return r
}

// requireSession rejects requests without an authenticated session.
func (h *Handlers) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := h.sessions.FromRequest(r)
		if sess == nil || !sess.Authenticated {
			respondError(w, http.StatusUnauthorized, errors.New("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
