package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/wayfarer/internal/booking"
	"github.com/MikeSquared-Agency/wayfarer/internal/store"
)

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Profiles.GetProfile(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, store.Profile{Name: booking.GuestName})
		return
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) putProfile(w http.ResponseWriter, r *http.Request) {
	var p store.Profile
	if err := decodeBody(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := s.deps.Profiles.SaveProfile(r.Context(), &p); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	var req booking.Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := s.deps.Bookings.Book(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) getBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.Bookings.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) bookingDocument(w http.ResponseWriter, r *http.Request) {
	kind := booking.DocumentKind(chi.URLParam(r, "document"))
	if kind != booking.DocumentTicket && kind != booking.DocumentReceipt {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown document %q", kind))
		return
	}
	doc, err := s.deps.Bookings.Document(chi.URLParam(r, "id"), kind)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Body)
}
