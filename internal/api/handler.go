// Package api provides the local HTTP API the presentation layer talks to.
//
//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SelJom/ClarityAI/internal/identity"
	"github.com/SelJom/ClarityAI/internal/state"
	"github.com/SelJom/ClarityAI/internal/store"
	"github.com/SelJom/ClarityAI/internal/syncer"
)

// maxRequestBodySize bounds JSON request bodies (1MB).
const maxRequestBodySize = 1 << 20

// ChatSender sends a user message over the streaming channel.
type ChatSender interface {
	SendUserMessage(ctx context.Context, text string) error
}

// Deps are the collaborators of Handler. Sender, Auth and Events may be nil;
// Syncer is required and works local-only without remote services.
type Deps struct {
	Store    store.Store
	Stores   state.Stores
	Syncer   *syncer.Syncer
	Sender   ChatSender
	Identity *identity.Identity
	Auth     identity.Authenticator
	Events   *Broker
}

// Handler serves the local API.
type Handler struct {
	store  store.Store
	stores state.Stores
	sync   *syncer.Syncer
	sender ChatSender
	id     *identity.Identity
	auth   identity.Authenticator
	events *Broker
	now    func() time.Time
}

// NewHandler creates a Handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		store:  d.Store,
		stores: d.Stores,
		sync:   d.Syncer,
		sender: d.Sender,
		id:     d.Identity,
		auth:   d.Auth,
		events: d.Events,
		now:    time.Now,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// stateError maps store errors to HTTP statuses.
func stateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, state.ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, state.ErrNotFinalStep):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, state.ErrEmptyEntry),
		errors.Is(err, state.ErrInvalidTag),
		errors.Is(err, state.ErrInvalidDate),
		errors.Is(err, state.ErrMoodOutOfRange),
		errors.Is(err, state.ErrInvalidStep),
		errors.Is(err, state.ErrInvalidFocus),
		errors.Is(err, state.ErrInvalidReminder):
		Error(w, http.StatusBadRequest, err.Error())
	default:
		Error(w, http.StatusInternalServerError, err.Error())
	}
}
