package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SelJom/ClarityAI/internal/domain"
)

// GetPlan returns the plan.
func (h *Handler) GetPlan(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.stores.Plan.Get())
}

type toggleRequest struct {
	ID string `json:"id"`
}

// ToggleActivity flips an activity's chosen flag.
func (h *Handler) ToggleActivity(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID == "" {
		Error(w, http.StatusBadRequest, "id is required")
		return
	}
	JSON(w, http.StatusOK, h.stores.Plan.Toggle(req.ID))
}

type focusRequest struct {
	Area domain.FocusArea `json:"area"`
}

// SetFocus toggles a focus area.
func (h *Handler) SetFocus(w http.ResponseWriter, r *http.Request) {
	var req focusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	next, err := h.sync.SetFocus(req.Area)
	if err != nil {
		stateError(w, err)
		return
	}
	JSON(w, http.StatusOK, next)
}

type reminderRequest struct {
	Reminder domain.Reminder `json:"reminder"`
}

// SetReminder sets the check-in cadence.
func (h *Handler) SetReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	next, err := h.sync.SetReminder(req.Reminder)
	if err != nil {
		stateError(w, err)
		return
	}
	JSON(w, http.StatusOK, next)
}

type addGoalRequest struct {
	Text string           `json:"text"`
	Area domain.FocusArea `json:"area,omitempty"`
}

// AddGoal appends a micro goal.
func (h *Handler) AddGoal(w http.ResponseWriter, r *http.Request) {
	var req addGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	goal, ok := h.stores.Plan.AddGoal(req.Text, req.Area)
	if !ok {
		Error(w, http.StatusUnprocessableEntity, "goal rejected: list full, text empty or unknown area")
		return
	}
	JSON(w, http.StatusCreated, goal)
}

// RemoveGoal deletes a micro goal.
func (h *Handler) RemoveGoal(w http.ResponseWriter, r *http.Request) {
	if !h.stores.Plan.RemoveGoal(chi.URLParam(r, "id")) {
		Error(w, http.StatusNotFound, "goal not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleGoal flips a micro goal's done flag.
func (h *Handler) ToggleGoal(w http.ResponseWriter, r *http.Request) {
	if !h.stores.Plan.ToggleGoal(chi.URLParam(r, "id")) {
		Error(w, http.StatusNotFound, "goal not found")
		return
	}
	JSON(w, http.StatusOK, h.stores.Plan.Get())
}

// ClearGoals deletes every micro goal.
func (h *Handler) ClearGoals(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.stores.Plan.ClearGoals())
}
