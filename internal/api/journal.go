package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SelJom/ClarityAI/internal/domain"
)

// ListJournal returns every journal entry.
func (h *Handler) ListJournal(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.stores.Journal.Journal())
}

type addJournalRequest struct {
	Content string          `json:"content"`
	Tag     domain.EntryTag `json:"tag,omitempty"`
}

// AddJournal appends an entry.
func (h *Handler) AddJournal(w http.ResponseWriter, r *http.Request) {
	var req addJournalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Tag == "" {
		req.Tag = domain.TagJournal
	}
	entry, err := h.stores.Journal.AddJournalTagged(req.Content, req.Tag)
	if err != nil {
		stateError(w, err)
		return
	}
	JSON(w, http.StatusCreated, entry)
}

type tagRequest struct {
	Tag domain.EntryTag `json:"tag"`
}

// TagJournal changes an entry's tag.
func (h *Handler) TagJournal(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	entry, err := h.stores.Journal.SetJournalTag(chi.URLParam(r, "id"), req.Tag)
	if err != nil {
		stateError(w, err)
		return
	}
	JSON(w, http.StatusOK, entry)
}

// RemoveJournal deletes an entry.
func (h *Handler) RemoveJournal(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.Journal.RemoveJournal(chi.URLParam(r, "id")); err != nil {
		stateError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearJournal deletes every entry.
func (h *Handler) ClearJournal(w http.ResponseWriter, _ *http.Request) {
	h.stores.Journal.ClearJournal()
	w.WriteHeader(http.StatusNoContent)
}

// PullJournal merges the server-side journal into the local one.
func (h *Handler) PullJournal(w http.ResponseWriter, r *http.Request) {
	added, err := h.sync.PullJournal(r.Context())
	if err != nil {
		remoteError(w, "Journal pull failed", err)
		return
	}
	JSON(w, http.StatusOK, map[string]int{"added": added})
}

// ListMoods returns every mood sample.
func (h *Handler) ListMoods(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.stores.Journal.Moods())
}

type addMoodRequest struct {
	Mood int    `json:"mood"`
	Note string `json:"note,omitempty"`
	Date string `json:"date,omitempty"`
}

// AddMood upserts the sample for a date (today when omitted).
func (h *Handler) AddMood(w http.ResponseWriter, r *http.Request) {
	var req addMoodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var (
		entry domain.MoodEntry
		err   error
	)
	if req.Date == "" {
		entry, err = h.stores.Journal.AddMood(req.Mood, req.Note)
	} else {
		entry, err = h.stores.Journal.AddMoodOn(req.Date, req.Mood, req.Note)
	}
	if err != nil {
		stateError(w, err)
		return
	}
	JSON(w, http.StatusOK, entry)
}

// ClearMoods deletes every sample.
func (h *Handler) ClearMoods(w http.ResponseWriter, _ *http.Request) {
	h.stores.Journal.ClearMoods()
	w.WriteHeader(http.StatusNoContent)
}
