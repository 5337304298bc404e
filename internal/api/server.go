package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/parrot/internal/conversation"
	"github.com/MikeSquared-Agency/parrot/internal/importer"
)

// Importer runs transcript and screenshot imports.
type Importer interface {
	ImportTranscript(ctx context.Context, label, text string, from, to *time.Time) (importer.Result, error)
	ImportOCR(ctx context.Context, label string, batches [][]conversation.RecognizedLine) (importer.Result, error)
}

// Contacts reads stored contacts.
type Contacts interface {
	List(ctx context.Context) ([]conversation.Contact, error)
	Get(ctx context.Context, id uuid.UUID) (conversation.Contact, error)
}

// Drafter writes reply suggestions for a contact.
type Drafter interface {
	Draft(ctx context.Context, c conversation.Contact, prompt string) (string, error)
}

type Server struct {
	router   *chi.Mux
	port     int
	importer Importer
	contacts Contacts
	drafter  Drafter
	logger   *slog.Logger

	authEnabled  bool
	draftLimiter *limiterPool
}

// NewServer wires the HTTP routes. drafter may be nil, in which case the draft
// endpoint answers 503. When apiToken is empty the API is unauthenticated.
func NewServer(port int, apiToken string, imp Importer, contacts Contacts, drafter Drafter, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		importer: imp,
		contacts: contacts,
		drafter:  drafter,
		logger:   logger,

		authEnabled:  apiToken != "",
		draftLimiter: newLimiterPool(defaultDraftRPS, defaultDraftBurst),
	}

	router.Get("/health", s.health)
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Use(middleware.AllowContentType("application/json"))

		r.Get("/parrot/status", s.status)
		r.Post("/imports/transcript", s.importTranscript)
		r.Post("/imports/ocr", s.importOCR)
		r.Get("/contacts", s.listContacts)
		r.Get("/contacts/{id}", s.getContact)
		r.Get("/contacts/{id}/similar", s.similarContacts)
		r.With(s.draftRateLimit).Post("/contacts/{id}/draft", s.draft)
	})

	return s
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	drafting := "disabled"
	if s.drafter != nil {
		drafting = "enabled"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"agent":    "parrot",
		"drafting": drafting,
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
