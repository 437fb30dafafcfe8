package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/insight"
	"github.com/ICGNU3/rhiz-prototype-sub002/internal/store"
	"github.com/ICGNU3/rhiz-prototype-sub002/internal/trust"
)

// Server is the rhiz HTTP API server.
type Server struct {
	db       *store.DB
	engine   *trust.Engine
	ledger   *trust.Ledger
	insights *insight.Service
	router   chi.Router
	version  string
	started  time.Time
}

// New creates a new Server over the trust engine, ledger and insight
// pipeline.
func New(db *store.DB, engine *trust.Engine, ledger *trust.Ledger, insights *insight.Service, version string) *Server {
	s := &Server{
		db:       db,
		engine:   engine,
		ledger:   ledger,
		insights: insights,
		version:  version,
		started:  time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/contacts", s.handleCreateContact)
		r.Get("/contacts", s.handleListContacts)
		r.Post("/contacts/{contactID}/interactions", s.handleAddInteraction)
		r.Get("/contacts/{contactID}/trust", s.handleGetTrust)
		r.Get("/contacts/{contactID}/trust/history", s.handleTrustHistory)

		r.Post("/goals", s.handleCreateGoal)

		r.Post("/contributions", s.handleRecordContribution)
		r.Post("/contributions/{eventID}/outcome", s.handleUpdateOutcome)

		r.Get("/trust/top", s.handleTopContributors)
		r.Get("/trust/insights", s.handleTrustInsights)
		r.Post("/trust/decay", s.handleDecay)

		r.Post("/insights/generate", s.handleGenerateInsights)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
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
