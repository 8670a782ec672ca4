package state

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/SelJom/ClarityAI/internal/domain"
	"github.com/SelJom/ClarityAI/internal/store"
)

// PlanStore owns the plan record: chosen activities, focus areas, micro
// goals and the reminder cadence. Capacity limits are enforced by eviction
// (focus) or rejection (goals), never by an error.
type PlanStore struct {
	v      *Value[domain.PlanState]
	newID  func() string
	logger *slog.Logger
}

// NewPlanStore restores the record from s.
func NewPlanStore(ctx context.Context, s store.Store, logger *slog.Logger) *PlanStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanStore{
		v:      NewPersisted(ctx, s, PlanKey, domain.DefaultPlan(), normalizePlan),
		newID:  uuid.NewString,
		logger: logger,
	}
}

func normalizePlan(p domain.PlanState) domain.PlanState {
	if p.Chosen == nil {
		p.Chosen = map[string]bool{}
	}
	focus := make([]domain.FocusArea, 0, len(p.Focus))
	for _, a := range p.Focus {
		if a.Valid() && !slices.Contains(focus, a) {
			focus = append(focus, a)
		}
	}
	if len(focus) > domain.MaxFocusAreas {
		focus = focus[len(focus)-domain.MaxFocusAreas:]
	}
	p.Focus = focus

	if p.Goals == nil {
		p.Goals = []domain.MicroGoal{}
	}
	if len(p.Goals) > domain.MaxMicroGoals {
		p.Goals = p.Goals[:domain.MaxMicroGoals]
	}
	if !p.Reminder.Valid() {
		p.Reminder = domain.ReminderOff
	}
	return p
}

// Get returns the current record.
func (p *PlanStore) Get() domain.PlanState { return p.v.Get() }

// Subscribe registers fn for every change.
func (p *PlanStore) Subscribe(fn func(domain.PlanState)) func() {
	return p.v.Subscribe(fn)
}

// Toggle flips the selection of an activity.
func (p *PlanStore) Toggle(activityID string) domain.PlanState {
	return p.v.Update(func(cur domain.PlanState) domain.PlanState {
		cur.Chosen = maps.Clone(cur.Chosen)
		cur.Chosen[activityID] = !cur.Chosen[activityID]
		return cur
	})
}

// SetFocus toggles area. Selecting a new area while two are already set
// evicts the older one.
func (p *PlanStore) SetFocus(area domain.FocusArea) (domain.PlanState, error) {
	if !area.Valid() {
		return p.v.Get(), ErrInvalidFocus
	}
	return p.v.Update(func(cur domain.PlanState) domain.PlanState {
		switch {
		case slices.Contains(cur.Focus, area):
			cur.Focus = slices.DeleteFunc(slices.Clone(cur.Focus), func(a domain.FocusArea) bool { return a == area })
		case len(cur.Focus) >= domain.MaxFocusAreas:
			cur.Focus = append(slices.Clone(cur.Focus[len(cur.Focus)-domain.MaxFocusAreas+1:]), area)
		default:
			cur.Focus = append(slices.Clip(cur.Focus), area)
		}
		return cur
	}), nil
}

// AddGoal appends a micro goal. It reports false, leaving the plan
// unchanged, when the list is full, the text is blank or the area is
// unknown.
func (p *PlanStore) AddGoal(text string, area domain.FocusArea) (domain.MicroGoal, bool) {
	text = strings.TrimSpace(text)
	if text == "" || (area != "" && !area.Valid()) {
		return domain.MicroGoal{}, false
	}
	goal := domain.MicroGoal{ID: p.newID(), Text: text, Area: area}
	_, ok := p.v.UpdateIf(func(cur domain.PlanState) (domain.PlanState, bool) {
		if len(cur.Goals) >= domain.MaxMicroGoals {
			return cur, false
		}
		cur.Goals = append(slices.Clip(cur.Goals), goal)
		return cur, true
	})
	if !ok {
		p.logger.Debug("micro goal rejected, plan is full", "limit", domain.MaxMicroGoals)
		return domain.MicroGoal{}, false
	}
	return goal, true
}

// RemoveGoal deletes a goal and reports whether it existed.
func (p *PlanStore) RemoveGoal(id string) bool {
	_, ok := p.v.UpdateIf(func(cur domain.PlanState) (domain.PlanState, bool) {
		i := slices.IndexFunc(cur.Goals, func(g domain.MicroGoal) bool { return g.ID == id })
		if i < 0 {
			return cur, false
		}
		cur.Goals = slices.Delete(slices.Clone(cur.Goals), i, i+1)
		return cur, true
	})
	return ok
}

// ToggleGoal flips a goal's done flag and reports whether it existed.
func (p *PlanStore) ToggleGoal(id string) bool {
	_, ok := p.v.UpdateIf(func(cur domain.PlanState) (domain.PlanState, bool) {
		i := slices.IndexFunc(cur.Goals, func(g domain.MicroGoal) bool { return g.ID == id })
		if i < 0 {
			return cur, false
		}
		cur.Goals = slices.Clone(cur.Goals)
		cur.Goals[i].Done = !cur.Goals[i].Done
		return cur, true
	})
	return ok
}

// ClearGoals removes every goal.
func (p *PlanStore) ClearGoals() domain.PlanState {
	return p.v.Update(func(cur domain.PlanState) domain.PlanState {
		cur.Goals = []domain.MicroGoal{}
		return cur
	})
}

// SetReminder sets the reminder cadence.
func (p *PlanStore) SetReminder(r domain.Reminder) (domain.PlanState, error) {
	if !r.Valid() {
		return p.v.Get(), ErrInvalidReminder
	}
	return p.v.Update(func(cur domain.PlanState) domain.PlanState {
		cur.Reminder = r
		return cur
	}), nil
}
