package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SelJom/ClarityAI/internal/identity"
	"github.com/SelJom/ClarityAI/internal/remote"
)

const healthCheckTimeout = 5 * time.Second

// Health returns the health status of the API and its dependencies.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := map[string]interface{}{
		"status": "healthy",
		"checks": checks,
	}
	statusCode := http.StatusOK

	if h.store == nil {
		checks["database"] = "disabled"
	} else if err := h.store.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		status["status"] = "degraded"
		checks["database"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	JSON(w, statusCode, status)
}

// GetMe returns the identity the client acts as.
func (h *Handler) GetMe(w http.ResponseWriter, _ *http.Request) {
	if h.id == nil {
		Error(w, http.StatusServiceUnavailable, "identity not available")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"user_id":   h.id.UserID(),
		"username":  h.id.Username(),
		"anonymous": h.id.Anonymous(),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a session through the profile service.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.id == nil || h.auth == nil {
		Error(w, http.StatusServiceUnavailable, "login not available")
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.id.Login(r.Context(), h.auth, req.Email, req.Password)
	if err != nil {
		var rerr *remote.RemoteError
		switch {
		case errors.Is(err, identity.ErrMissingCredentials):
			Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, remote.ErrLoginFailed), errors.As(err, &rerr):
			Error(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, remote.ErrNotConfigured):
			Error(w, http.StatusServiceUnavailable, err.Error())
		default:
			Error(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	slog.Info("User logged in", "user_id", sess.UserID)
	JSON(w, http.StatusOK, map[string]string{"user_id": sess.UserID, "session_token": sess.Token})
}

// Logout forgets the logged-in user.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.id == nil {
		Error(w, http.StatusServiceUnavailable, "identity not available")
		return
	}
	h.id.Logout(r.Context())
	JSON(w, http.StatusOK, map[string]string{"user_id": h.id.UserID()})
}
