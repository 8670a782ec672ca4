package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SelJom/ClarityAI/internal/domain"
	"github.com/SelJom/ClarityAI/internal/stream"
)

// GetChat returns the transcript.
func (h *Handler) GetChat(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.stores.Journal.Chat())
}

// SetChat replaces the transcript.
func (h *Handler) SetChat(w http.ResponseWriter, r *http.Request) {
	var msgs []domain.ChatMessage
	if err := decodeJSON(w, r, &msgs); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	h.stores.Journal.SetChat(msgs)
	JSON(w, http.StatusOK, h.stores.Journal.Chat())
}

type sendChatRequest struct {
	Text string `json:"text"`
}

// SendChat sends a user message. The transcript is updated before the
// message goes out and keeps the update even when sending fails; the reply
// streams in through the events feed.
func (h *Handler) SendChat(w http.ResponseWriter, r *http.Request) {
	if h.sender == nil {
		Error(w, http.StatusServiceUnavailable, stream.ErrNotConfigured.Error())
		return
	}
	var req sendChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.sender.SendUserMessage(r.Context(), req.Text); err != nil {
		switch {
		case errors.Is(err, stream.ErrEmptyMessage):
			Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, stream.ErrNotConfigured):
			Error(w, http.StatusServiceUnavailable, err.Error())
		default:
			slog.Warn("Chat send failed", "error", err)
			Error(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	JSON(w, http.StatusAccepted, h.stores.Journal.Chat())
}

// ClearChat empties the transcript.
func (h *Handler) ClearChat(w http.ResponseWriter, _ *http.Request) {
	h.stores.Journal.ClearChat()
	w.WriteHeader(http.StatusNoContent)
}

// ArchiveChat moves the transcript into a Conversation journal entry.
func (h *Handler) ArchiveChat(w http.ResponseWriter, _ *http.Request) {
	entry, err := h.stores.Journal.ArchiveChat()
	if err != nil {
		stateError(w, err)
		return
	}
	JSON(w, http.StatusCreated, entry)
}
