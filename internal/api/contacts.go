package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/parrot/internal/contact"
	"github.com/MikeSquared-Agency/parrot/internal/conversation"
	"github.com/MikeSquared-Agency/parrot/internal/drafter"
	"github.com/MikeSquared-Agency/parrot/internal/style"
)

type contactSummary struct {
	ID             string     `json:"id"`
	Label          string     `json:"label"`
	Handle         *string    `json:"handle,omitempty"`
	MessageCount   int        `json:"message_count"`
	LastMessageAt  *time.Time `json:"last_message_at,omitempty"`
	StyleEmbedding []float64  `json:"style_embedding,omitempty"`
}

type draftRequest struct {
	Prompt string `json:"prompt"`
}

func summarize(c conversation.Contact) contactSummary {
	out := contactSummary{
		ID:             c.ID.String(),
		Label:          c.Label,
		Handle:         c.Handle,
		MessageCount:   len(c.Messages),
		StyleEmbedding: c.StyleEmbedding,
	}
	if n := len(c.Messages); n > 0 {
		ts := c.Messages[n-1].Timestamp
		out.LastMessageAt = &ts
	}
	return out
}

// listContacts handles GET /api/v1/contacts
func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.contacts.List(r.Context())
	if err != nil {
		s.logger.Error("list contacts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}

	out := make([]contactSummary, len(contacts))
	for i, c := range contacts {
		out[i] = summarize(c)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"contacts": out,
		"count":    len(out),
	})
}

// getContact handles GET /api/v1/contacts/{id}?limit=N
// A positive limit returns only the N most recent messages.
func (s *Server) getContact(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupContact(w, r)
	if !ok {
		return
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if limit > 0 && len(c.Messages) > limit {
			c.Messages = c.Messages[len(c.Messages)-limit:]
		}
	}

	writeJSON(w, http.StatusOK, c)
}

// similarContacts handles GET /api/v1/contacts/{id}/similar?limit=N
// Other contacts are ranked by how closely their style embedding matches.
func (s *Server) similarContacts(w http.ResponseWriter, r *http.Request) {
	target, ok := s.lookupContact(w, r)
	if !ok {
		return
	}

	limit := 5
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	all, err := s.contacts.List(r.Context())
	if err != nil {
		s.logger.Error("list contacts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}

	var others []conversation.Contact
	var embeddings [][]float64
	for _, c := range all {
		if c.ID == target.ID {
			continue
		}
		others = append(others, c)
		embeddings = append(embeddings, c.StyleEmbedding)
	}

	type similar struct {
		contactSummary
		Score float64 `json:"score"`
	}
	out := []similar{}
	for _, m := range style.Rank(target.StyleEmbedding, embeddings) {
		if len(out) == limit {
			break
		}
		out = append(out, similar{contactSummary: summarize(others[m.Index]), Score: m.Score})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"contact_id": target.ID.String(),
		"similar":    out,
	})
}

// draft handles POST /api/v1/contacts/{id}/draft
func (s *Server) draft(w http.ResponseWriter, r *http.Request) {
	if s.drafter == nil {
		writeError(w, http.StatusServiceUnavailable, "drafting is not configured")
		return
	}

	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	c, ok := s.lookupContact(w, r)
	if !ok {
		return
	}

	text, err := s.drafter.Draft(r.Context(), c, req.Prompt)
	switch {
	case errors.Is(err, drafter.ErrEmptyPrompt):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("draft failed", "contact_id", c.ID.String(), "error", err)
		writeError(w, http.StatusBadGateway, "draft failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"draft": text})
}

func (s *Server) lookupContact(w http.ResponseWriter, r *http.Request) (conversation.Contact, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contact id")
		return conversation.Contact{}, false
	}

	c, err := s.contacts.Get(r.Context(), id)
	if errors.Is(err, contact.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return conversation.Contact{}, false
	}
	if err != nil {
		s.logger.Error("get contact failed", "contact_id", id.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load contact")
		return conversation.Contact{}, false
	}
	return c, true
}
