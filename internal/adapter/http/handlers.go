package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/lukthan/internal/domain/message"
	"github.com/Strob0t/lukthan/internal/domain/settings"
	"github.com/Strob0t/lukthan/internal/service"
)

// Viewers reports how many browsers are attached to the mirror.
type Viewers interface {
	ConnectionCount() int
}

// Handlers serves a live session to browser viewers.
type Handlers struct {
	Session *service.Session
	Viewers Viewers
}

// SessionView is the state a viewer needs to render the conversation.
type SessionView struct {
	Messages   []message.Message   `json:"messages"`
	Thinking   string              `json:"thinking,omitempty"`
	Busy       bool                `json:"busy"`
	Attachment *message.Attachment `json:"attachment,omitempty"`
	Settings   settings.Settings   `json:"settings"`
	Voice      string              `json:"voice_state,omitempty"`
}

// Snapshot captures s for a viewer.
func Snapshot(s *service.Session) SessionView {
	v := SessionView{
		Messages:   s.Log.Snapshot(),
		Busy:       s.Gateway.Busy(),
		Attachment: s.Attachments.Pending(),
		Settings:   s.Settings.Get(),
	}
	if text, ok := s.Gateway.Thinking(); ok {
		v.Thinking = text
	}
	if s.Voice != nil {
		v.Voice = string(s.Voice.State())
	}
	return v
}

// Health reports liveness and the number of attached viewers.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	viewers := 0
	if h.Viewers != nil {
		viewers = h.Viewers.ConnectionCount()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"viewers": viewers,
		"busy":    h.Session.Gateway.Busy(),
	})
}

// GetConversation handles GET /api/conversation.
func (h *Handlers) GetConversation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Snapshot(h.Session))
}

// GetSettings handles GET /api/settings.
func (h *Handlers) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Session.Settings.Get())
}

// PatchSettings handles PATCH /api/settings.
func (h *Handlers) PatchSettings(w http.ResponseWriter, r *http.Request) {
	p, ok := readJSON[settings.Patch](w, r)
	if !ok {
		return
	}
	next, err := h.Session.Settings.Update(r.Context(), p)
	if err != nil {
		writeDomainError(w, err, "settings not updated")
		return
	}
	writeJSON(w, http.StatusOK, next)
}

// ListHistory handles GET /api/history?limit=n.
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	page, err := h.Session.History.List(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetHistorySession handles GET /api/history/{id}.
func (h *Handlers) GetHistorySession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	sess, err := h.Session.History.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
