package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/wayfarer/internal/booking"
	"github.com/MikeSquared-Agency/wayfarer/internal/session"
	"github.com/MikeSquared-Agency/wayfarer/internal/store"
)

// ProfileStore is the profile half of store.Store.
type ProfileStore interface {
	GetProfile(ctx context.Context) (*store.Profile, error)
	SaveProfile(ctx context.Context, p *store.Profile) error
}

// Deps are the services the HTTP surface fronts.
type Deps struct {
	Sessions    *session.Manager
	Profiles    ProfileStore
	Bookings    *booking.Service
	StoreDriver string
	PlannerURL  string
	Events      bool
	Logger      *slog.Logger
}

type Server struct {
	router *chi.Mux
	port   int
	deps   Deps
	srv    *http.Server
}

func NewServer(port int, apiToken string, deps Deps) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		deps:   deps,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/wayfarer/status", s.status)

	router.Group(func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))

		r.Route("/api/v1/conversations", func(r chi.Router) {
			r.Get("/", s.listConversations)
			r.Post("/", s.createConversation)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getConversation)
				r.Post("/open", s.openConversation)
				r.Post("/messages", s.sendMessage)
				r.Delete("/selection", s.clearSelection)
				r.Route("/results/{setID}/{index}", func(r chi.Router) {
					r.Post("/enhance", s.enhance)
					r.Post("/like", s.toggleLike)
					r.Post("/compare", s.toggleCompare)
					r.Post("/finalize", s.finalize)
				})
			})
		})

		r.Get("/api/v1/profile", s.getProfile)
		r.Put("/api/v1/profile", s.putProfile)

		r.Post("/api/v1/bookings", s.createBooking)
		r.Get("/api/v1/bookings/{id}", s.getBooking)
		r.Get("/api/v1/bookings/{id}/{document}", s.bookingDocument)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.srv = &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	slog.Info("API server starting", "addr", addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "wayfarer",
		"store":   s.deps.StoreDriver,
		"planner": s.deps.PlannerURL,
		"events":  s.deps.Events,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeDomainError maps service sentinels onto status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrEmptyMessage),
		errors.Is(err, booking.ErrInvalidRequest):
		code = http.StatusBadRequest
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrResultNotFound),
		errors.Is(err, booking.ErrBookingNotFound):
		code = http.StatusNotFound
	case errors.Is(err, session.ErrBusy),
		errors.Is(err, session.ErrCompareFull):
		code = http.StatusConflict
	case errors.Is(err, session.ErrTooManyWords),
		errors.Is(err, session.ErrNotEnhanceable),
		errors.Is(err, session.ErrNotFinalizable):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, booking.ErrPaymentDeclined):
		code = http.StatusPaymentRequired
	}
	if code == http.StatusInternalServerError {
		s.deps.Logger.Error("request failed", "error", err)
	}
	writeError(w, code, err.Error())
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
