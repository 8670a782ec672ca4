package state

import (
	"context"
	"errors"
	"testing"

	"github.com/SelJom/ClarityAI/internal/domain"
	"github.com/SelJom/ClarityAI/internal/store"
)

func TestOnboardingNavigation(t *testing.T) {
	t.Parallel()
	o := NewOnboardingStore(context.Background(), store.NewMemory(), nil)

	if got := o.Back(); got.Step != 0 {
		t.Errorf("Back() at first step = %d, want 0", got.Step)
	}
	for i := 1; i <= domain.LastOnboardingStep; i++ {
		if got := o.Next(); got.Step != i || got.Completed {
			t.Fatalf("Next() = %+v, want step %d not completed", got, i)
		}
	}
	if got := o.Back(); got.Step != domain.LastOnboardingStep-1 {
		t.Errorf("Back() = %d, want %d", got.Step, domain.LastOnboardingStep-1)
	}

	if _, err := o.SetStep(domain.LastOnboardingStep + 1); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("SetStep(out of range) error = %v, want ErrInvalidStep", err)
	}
	if _, err := o.SetStep(-1); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("SetStep(-1) error = %v, want ErrInvalidStep", err)
	}
	if got, err := o.SetStep(2); err != nil || got.Step != 2 {
		t.Errorf("SetStep(2) = %+v, %v", got, err)
	}
}

func TestOnboardingCompleteLatch(t *testing.T) {
	t.Parallel()
	s := store.NewMemory()
	o := NewOnboardingStore(context.Background(), s, nil)

	if _, err := o.Complete(); !errors.Is(err, ErrNotFinalStep) {
		t.Fatalf("Complete() before final step error = %v, want ErrNotFinalStep", err)
	}
	if o.Get().Completed {
		t.Fatal("Completed set before the final step")
	}

	if _, err := o.SetStep(domain.LastOnboardingStep); err != nil {
		t.Fatal(err)
	}
	if got, err := o.Complete(); err != nil || !got.Completed {
		t.Fatalf("Complete() = %+v, %v", got, err)
	}

	// Navigating back does not clear the latch.
	if got := o.Back(); !got.Completed {
		t.Error("Back() cleared Completed")
	}

	restored := NewOnboardingStore(context.Background(), s, nil)
	if !restored.Get().Completed {
		t.Error("Completed not persisted")
	}

	reset := o.Reset()
	if reset.Completed || reset.Step != 0 || reset.Space.VoiceNotes {
		t.Errorf("Reset() = %+v, want default", reset)
	}
	if got := NewOnboardingStore(context.Background(), s, nil).Get(); got.Completed {
		t.Error("Reset() not persisted")
	}
}

func TestOnboardingNextOnFinalStepCompletes(t *testing.T) {
	t.Parallel()
	o := NewOnboardingStore(context.Background(), nil, nil)

	if _, err := o.SetStep(domain.LastOnboardingStep); err != nil {
		t.Fatal(err)
	}
	if got := o.Next(); !got.Completed || got.Step != domain.LastOnboardingStep {
		t.Errorf("Next() = %+v, want completed on final step", got)
	}
}

func TestOnboardingUpdateIsShallow(t *testing.T) {
	t.Parallel()
	o := NewOnboardingStore(context.Background(), store.NewMemory(), nil)

	o.Update(domain.OnboardingPatch{Identity: &domain.Identity{Name: "Ada", Nickname: "A"}})
	got := o.Update(domain.OnboardingPatch{Identity: &domain.Identity{Nickname: "Lovelace"}})

	if got.Identity.Name != "" || got.Identity.Nickname != "Lovelace" {
		t.Errorf("Identity = %+v, want group replaced", got.Identity)
	}

	calls := 0
	o.Subscribe(func(domain.OnboardingState) { calls++ })
	o.Update(domain.OnboardingPatch{})
	if calls != 0 {
		t.Errorf("empty patch published %d times", calls)
	}
}

func TestOnboardingLoadClampsStep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemory()
	store.Save(ctx, s, OnboardingKey, domain.OnboardingState{Step: 42})

	if got := NewOnboardingStore(ctx, s, nil).Get().Step; got != domain.LastOnboardingStep {
		t.Errorf("Step = %d, want clamped to %d", got, domain.LastOnboardingStep)
	}
}
