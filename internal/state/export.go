package state

import (
	"context"
	"log/slog"
	"time"

	"github.com/SelJom/ClarityAI/internal/domain"
	"github.com/SelJom/ClarityAI/internal/store"
)

// Stores bundles the three stores that make up a user's local data.
type Stores struct {
	Journal    *JournalStore
	Onboarding *OnboardingStore
	Plan       *PlanStore
}

// Export returns a versioned snapshot of every store. Each collection is
// read independently; there is no cross-store consistency point.
func (s Stores) Export(now time.Time) domain.Export {
	return domain.Export{
		Onboarding: s.Onboarding.Get(),
		Plan:       s.Plan.Get(),
		Data: domain.ExportData{
			Journal: s.Journal.Journal(),
			Moods:   s.Journal.Moods(),
			Chat:    s.Journal.Chat(),
		},
		Version:    domain.ExportVersion,
		ExportedAt: now.UTC(),
	}
}

// Open restores every store from s.
func Open(ctx context.Context, s store.Store, logger *slog.Logger) Stores {
	return Stores{
		Journal:    NewJournalStore(ctx, s, logger),
		Onboarding: NewOnboardingStore(ctx, s, logger),
		Plan:       NewPlanStore(ctx, s, logger),
	}
}
