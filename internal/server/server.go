package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/veloform/veloform/internal/coach"
	"github.com/veloform/veloform/internal/ingest/trainer"
	"github.com/veloform/veloform/internal/ingest/wearable"
	"github.com/veloform/veloform/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	svc      *coach.Service
	wearable *wearable.Provider
	trainer  *trainer.Provider
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, svc *coach.Service, wearableProvider *wearable.Provider, trainerProvider *trainer.Provider, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		svc:      svc,
		wearable: wearableProvider,
		trainer:  trainerProvider,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(DevIdentity)

	// Sync endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/wearable", s.handleWearableIngest)
		r.Post("/trainer", s.handleTrainerIngest)
	})

	// Coaching API endpoints (no auth; tsnet handles access when enabled)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/allowlist", s.handleAllowlist)

	s.router.Route("/api/v1/athletes", func(r chi.Router) {
		r.Get("/", s.handleListAthletes)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetAthlete)
			r.Put("/", s.handleUpdateAthlete)

			r.Get("/metabolic", s.handleGetMetabolic)
			r.Post("/metabolic/fit", s.handleFitMetabolic)
			r.Get("/metabolic/snapshots", s.handleListSnapshots)
			r.Post("/metabolic/snapshots/{snapshotID}/promote", s.handlePromoteSnapshot)
			r.Get("/zones", s.handleGetZones)

			r.Get("/load", s.handleGetLoad)
			r.Get("/readiness", s.handleGetReadiness)

			r.Get("/sessions", s.handleQuerySessions)
			r.Get("/biometrics", s.handleQueryBiometrics)
			r.Get("/biometrics/latest", s.handleLatestBiometrics)
			r.Get("/power-curve", s.handlePowerCurve)
			r.Get("/stats", s.handleStats)
			r.Get("/sync-logs", s.handleSyncLogs)
		})
	})
}
