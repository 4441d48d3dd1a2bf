package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/wayfarer/internal/conversation"
	"github.com/MikeSquared-Agency/wayfarer/internal/session"
	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

type messageRequest struct {
	Text string `json:"text"`
}

type enhanceRequest struct {
	Instruction string `json:"instruction"`
}

type finalizeResponse struct {
	Itinerary trip.Itinerary `json:"itinerary"`
	State     session.State  `json:"state"`
}

// conversationSummary is one entry of the recent list.
type conversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func summarize(c conversation.Conversation) conversationSummary {
	return conversationSummary{
		ID:           c.ID,
		Title:        c.Title,
		MessageCount: len(c.Messages),
		UpdatedAt:    c.UpdatedAt,
	}
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	convs, err := s.deps.Sessions.Recent(r.Context(), limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	out := make([]conversationSummary, 0, len(convs))
	for _, c := range convs {
		out = append(out, summarize(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createConversation(w http.ResponseWriter, r *http.Request) {
	ctrl := s.deps.Sessions.Create()
	writeJSON(w, http.StatusCreated, ctrl.Snapshot())
}

// controller resolves the {id} path param, writing the error response itself
// when the conversation is unknown.
func (s *Server) controller(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	ctrl, err := s.deps.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return nil, false
	}
	return ctrl, true
}

// resultRef parses the {setID}/{index} path params.
func resultRef(w http.ResponseWriter, r *http.Request) (session.Ref, bool) {
	setID, err := uuid.Parse(chi.URLParam(r, "setID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid result set id")
		return session.Ref{}, false
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "invalid result index")
		return session.Ref{}, false
	}
	return session.Ref{ResultSetID: setID, Index: index}, true
}

func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) openConversation(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.deps.Sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controller(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := ctrl.SendMessage(r.Context(), req.Text); err != nil {
		if errors.Is(err, session.ErrTooManyWords) {
			writeError(w, http.StatusUnprocessableEntity, ctrl.Snapshot().Notice)
			return
		}
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) clearSelection(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controller(w, r)
	if !ok {
		return
	}
	ctrl.ClearResults(r.Context())
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) enhance(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controller(w, r)
	if !ok {
		return
	}
	ref, ok := resultRef(w, r)
	if !ok {
		return
	}
	var req enhanceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := ctrl.Enhance(r.Context(), ref, req.Instruction); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request) {
	s.toggle(w, r, (*session.Controller).ToggleLike)
}

func (s *Server) toggleCompare(w http.ResponseWriter, r *http.Request) {
	s.toggle(w, r, (*session.Controller).ToggleCompare)
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request, fn func(*session.Controller, session.Ref) error) {
	ctrl, ok := s.controller(w, r)
	if !ok {
		return
	}
	ref, ok := resultRef(w, r)
	if !ok {
		return
	}
	if err := fn(ctrl, ref); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot().Selection)
}

func (s *Server) finalize(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controller(w, r)
	if !ok {
		return
	}
	ref, ok := resultRef(w, r)
	if !ok {
		return
	}
	it, err := ctrl.Finalize(r.Context(), ref)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, finalizeResponse{Itinerary: it, State: ctrl.Snapshot()})
}
