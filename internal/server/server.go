package server

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lazypower/dettato/internal/alexa"
	"github.com/lazypower/dettato/internal/skill"
	"github.com/lazypower/dettato/internal/store"
)

// maxWebhookBody bounds an Alexa request body.
const maxWebhookBody = 128 << 10

// Options wire the optional collaborators of a Server.
type Options struct {
	// Verifier checks webhook requests; nil accepts everything.
	Verifier *alexa.Verifier
	// Profile resolves user email addresses; nil means no recipient.
	Profile *alexa.ProfileClient
	// AdminToken, when set, is required as a bearer token on the operator API.
	AdminToken string
	Logger     *slog.Logger
}

// Server is the dettato HTTP server. ServeHTTP answers only the Alexa
// webhook; the operator API is a separate handler from Admin so it can be
// bound to a private listener.
type Server struct {
	db         *store.DB
	skill      *skill.Handler
	verifier   *alexa.Verifier
	profile    *alexa.ProfileClient
	adminToken string
	log        *slog.Logger
	router     chi.Router
	admin      chi.Router
	version    string
	started    time.Time
}

// New creates a Server answering turns with h.
func New(db *store.DB, h *skill.Handler, version string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		db:         db,
		skill:      h,
		verifier:   opts.Verifier,
		profile:    opts.Profile,
		adminToken: opts.AdminToken,
		log:        logger,
		version:    version,
		started:    time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler for the public webhook.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Admin returns the operator API handler.
func (s *Server) Admin() http.Handler {
	return s.admin
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/", s.handleWebhook)
	r.Post("/alexa", s.handleWebhook)
	s.router = r

	a := chi.NewRouter()
	a.Use(middleware.RequestID)
	a.Use(middleware.Recoverer)
	a.Use(s.requireToken)

	a.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/sessions", s.handleListSessions)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/notes", s.handleListNotes)
			r.Post("/notes", s.handleSaveNote)
			r.Get("/retention", s.handleGetRetention)
			r.Put("/retention", s.handleSetRetention)
			r.Delete("/retention", s.handleClearRetention)
			r.Post("/cleanup", s.handleCleanup)
		})
	})
	s.admin = a
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken != "" {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.adminToken)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}
	schema, _ := s.db.SchemaVersion()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        s.version,
		"uptime":         time.Since(s.started).Seconds(),
		"db":             dbOK,
		"db_path":        s.db.Path,
		"schema_version": schema,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
