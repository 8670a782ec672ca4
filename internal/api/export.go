package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SelJom/ClarityAI/internal/remote"
	"github.com/SelJom/ClarityAI/internal/syncer"
)

// Export returns a versioned snapshot of all local data as a download.
func (h *Handler) Export(w http.ResponseWriter, _ *http.Request) {
	snap := h.stores.Export(h.now())
	w.Header().Set("Content-Disposition", `attachment; filename="clarity-export-`+snap.ExportedAt.Format("2006-01-02")+`.json"`)
	JSON(w, http.StatusOK, snap)
}

// ListInsights returns the insights of a server-side journal.
func (h *Handler) ListInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.sync.FetchInsights(r.Context(), chi.URLParam(r, "journalID"))
	if err != nil {
		remoteError(w, "Insight fetch failed", err)
		return
	}
	if insights == nil {
		insights = []remote.Insight{}
	}
	JSON(w, http.StatusOK, insights)
}

// PublishInsight records a new insight on the content service.
func (h *Handler) PublishInsight(w http.ResponseWriter, r *http.Request) {
	var req remote.NewInsight
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	insight, err := h.sync.PublishInsight(r.Context(), req)
	if err != nil {
		remoteError(w, "Insight publish failed", err)
		return
	}
	JSON(w, http.StatusCreated, insight)
}

// remoteError maps a remote call failure to a gateway status.
func remoteError(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, syncer.ErrNoContentService) || errors.Is(err, remote.ErrNotConfigured) {
		Error(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	slog.Warn(msg, "error", err)
	Error(w, http.StatusBadGateway, err.Error())
}
