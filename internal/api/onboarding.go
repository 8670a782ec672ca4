package api

import (
	"net/http"

	"github.com/SelJom/ClarityAI/internal/domain"
)

// GetOnboarding returns the onboarding record.
func (h *Handler) GetOnboarding(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.stores.Onboarding.Get())
}

// UpdateOnboarding merges a patch of answer groups.
func (h *Handler) UpdateOnboarding(w http.ResponseWriter, r *http.Request) {
	var patch domain.OnboardingPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	JSON(w, http.StatusOK, h.sync.UpdateOnboarding(patch))
}

type stepRequest struct {
	Step int `json:"step"`
}

// SetStep jumps to a wizard step.
func (h *Handler) SetStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	next, err := h.stores.Onboarding.SetStep(req.Step)
	if err != nil {
		stateError(w, err)
		return
	}
	JSON(w, http.StatusOK, next)
}

// NextStep advances the wizard, completing it from the review step.
func (h *Handler) NextStep(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.sync.NextOnboarding())
}

// PrevStep moves the wizard back one step.
func (h *Handler) PrevStep(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.stores.Onboarding.Back())
}

// CompleteOnboarding finishes the wizard. Only allowed on the review step.
func (h *Handler) CompleteOnboarding(w http.ResponseWriter, _ *http.Request) {
	next, err := h.sync.CompleteOnboarding()
	if err != nil {
		stateError(w, err)
		return
	}
	JSON(w, http.StatusOK, next)
}

// ResetOnboarding restores the default record.
func (h *Handler) ResetOnboarding(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.stores.Onboarding.Reset())
}
