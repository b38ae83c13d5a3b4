// Package server exposes the ledger over a JSON HTTP API with live change events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	apperrors "github.com/ktrou69-commits/energy-coins/internal/errors"
	"github.com/ktrou69-commits/energy-coins/internal/ledger"
	"github.com/ktrou69-commits/energy-coins/internal/logger"
	"github.com/ktrou69-commits/energy-coins/internal/scheduler"
	"github.com/ktrou69-commits/energy-coins/internal/stats"
	"github.com/ktrou69-commits/energy-coins/internal/validation"
)

// Config holds server configuration
type Config struct {
	Addr           string
	AllowedOrigins []string
	Now            func() time.Time
}

// Server serves the ledger API
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	hub        *Hub
	unsub      func()

	store     *ledger.Store
	stats     *stats.Aggregator
	scheduler *scheduler.Scheduler
	validator *validation.Validator
	now       func() time.Time
}

// New builds a server around store and subscribes the websocket hub to its changes
func New(store *ledger.Store, cfg Config) *Server {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		hub:       NewHub(),
		store:     store,
		stats:     stats.New(store),
		scheduler: scheduler.New(scheduler.WithClock(now)),
		validator: validation.New(),
		now:       now,
	}
	s.setupRouter(cfg.AllowedOrigins)
	s.unsub = store.Subscribe(func(c ledger.Change) {
		s.hub.Broadcast(NewEvent(string(c.Kind), c, now()))
	})

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter(origins []string) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Route("/days/{date}", func(r chi.Router) {
			r.Get("/", s.handleGetDay)
			r.Get("/coins", s.handleGetCoins)
			r.Get("/next-slot", s.handleNextSlot)
			r.Get("/check", s.handleCheckDay)
			r.Put("/notes", s.handleSetNotes)
			r.Post("/actions", s.handleCreateAction)
			r.Patch("/actions/{id}", s.handleUpdateAction)
			r.Delete("/actions/{id}", s.handleDeleteAction)
			r.Post("/actions/{id}/move", s.handleMoveAction)
		})

		r.Get("/stats/day/{date}", s.handleDayStats)
		r.Get("/stats/week/{date}", s.handleWeekStats)
		r.Get("/stats/month/{year}/{month}", s.handleMonthStats)
		r.Get("/stats/hourly/{date}", s.handleHourlyStats)
		r.Get("/stats/report/{date}", s.handleReport)
		r.Get("/stats/life", s.handleLifeStats)

		r.Get("/settings", s.handleGetSettings)
		r.Patch("/settings", s.handleUpdateSettings)
		r.Get("/suggestions", s.handleSuggestions)
	})

	r.Get("/ws", s.hub.ServeWS)

	s.router = r
}

// requestLogger logs each request through the application logger
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe starts the hub and blocks serving HTTP until Shutdown
func (s *Server) ListenAndServe() error {
	go s.hub.Run()
	logger.Info("API server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, closes websocket clients and detaches from the store
func (s *Server) Shutdown(ctx context.Context) error {
	if s.unsub != nil {
		s.unsub()
	}
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrActionNotFound):
		return http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrPersistence):
		return http.StatusServiceUnavailable
	case apperrors.Is(err, apperrors.ErrInvalidAction),
		apperrors.Is(err, apperrors.ErrInvalidDateFormat),
		apperrors.Is(err, apperrors.ErrInvalidTimeFormat),
		apperrors.Is(err, apperrors.ErrUnknownCategoryOrPriority):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	}
	respondError(w, status, err.Error())
}
