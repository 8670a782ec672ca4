package state

import (
	"context"
	"log/slog"

	"github.com/SelJom/ClarityAI/internal/domain"
	"github.com/SelJom/ClarityAI/internal/store"
)

// OnboardingStore owns the onboarding wizard record.
type OnboardingStore struct {
	v      *Value[domain.OnboardingState]
	logger *slog.Logger
}

// NewOnboardingStore restores the record from s.
func NewOnboardingStore(ctx context.Context, s store.Store, logger *slog.Logger) *OnboardingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnboardingStore{
		v:      NewPersisted(ctx, s, OnboardingKey, domain.DefaultOnboarding(), normalizeOnboarding),
		logger: logger,
	}
}

func normalizeOnboarding(o domain.OnboardingState) domain.OnboardingState {
	o.Step = min(max(o.Step, 0), domain.LastOnboardingStep)
	return o
}

// Get returns the current record.
func (o *OnboardingStore) Get() domain.OnboardingState { return o.v.Get() }

// Subscribe registers fn for every change.
func (o *OnboardingStore) Subscribe(fn func(domain.OnboardingState)) func() {
	return o.v.Subscribe(fn)
}

// SetStep moves the wizard to step n.
func (o *OnboardingStore) SetStep(n int) (domain.OnboardingState, error) {
	if n < 0 || n > domain.LastOnboardingStep {
		return o.v.Get(), ErrInvalidStep
	}
	return o.v.Update(func(cur domain.OnboardingState) domain.OnboardingState {
		cur.Step = n
		return cur
	}), nil
}

// Next advances one step. On the final step it completes the wizard.
func (o *OnboardingStore) Next() domain.OnboardingState {
	return o.v.Update(func(cur domain.OnboardingState) domain.OnboardingState {
		if cur.Step >= domain.LastOnboardingStep {
			cur.Step = domain.LastOnboardingStep
			cur.Completed = true
			return cur
		}
		cur.Step++
		return cur
	})
}

// Back retreats one step, stopping at the first.
func (o *OnboardingStore) Back() domain.OnboardingState {
	next, _ := o.v.UpdateIf(func(cur domain.OnboardingState) (domain.OnboardingState, bool) {
		if cur.Step <= 0 {
			return cur, false
		}
		cur.Step--
		return cur, true
	})
	return next
}

// Update shallow-merges patch: each group present in the patch replaces the
// whole group in the record. Step and Completed are never touched.
func (o *OnboardingStore) Update(patch domain.OnboardingPatch) domain.OnboardingState {
	next, _ := o.v.UpdateIf(func(cur domain.OnboardingState) (domain.OnboardingState, bool) {
		if patch.Empty() {
			return cur, false
		}
		return patch.Apply(cur), true
	})
	return next
}

// Complete latches Completed. It only succeeds from the final step.
func (o *OnboardingStore) Complete() (domain.OnboardingState, error) {
	var err error
	next, _ := o.v.UpdateIf(func(cur domain.OnboardingState) (domain.OnboardingState, bool) {
		if cur.Step != domain.LastOnboardingStep {
			err = ErrNotFinalStep
			return cur, false
		}
		cur.Completed = true
		return cur, true
	})
	if err == nil {
		o.logger.Info("onboarding completed")
	}
	return next, err
}

// Reset restores and persists the default record.
func (o *OnboardingStore) Reset() domain.OnboardingState {
	return o.v.Update(func(domain.OnboardingState) domain.OnboardingState {
		return domain.DefaultOnboarding()
	})
}
