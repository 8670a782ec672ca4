// Package syncer pairs local store mutations with remote calls. The local
// mutation is applied first and is never rolled back; the remote call runs
// in the background and its failure is only logged.
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/SelJom/ClarityAI/internal/domain"
	"github.com/SelJom/ClarityAI/internal/metrics"
	"github.com/SelJom/ClarityAI/internal/remote"
	"github.com/SelJom/ClarityAI/internal/state"
)

// ErrNoContentService is returned by pulls when no content service is set.
var ErrNoContentService = errors.New("content service not configured")

// Syncer runs the remote side of store operations for one user.
type Syncer struct {
	userID  string
	stores  state.Stores
	profile *remote.ProfileService
	content *remote.ContentService
	logger  *slog.Logger

	wg sync.WaitGroup
}

// New creates a Syncer. Either service may be nil; operations that need it
// then stay local.
func New(userID string, stores state.Stores, profile *remote.ProfileService, content *remote.ContentService, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		userID:  userID,
		stores:  stores,
		profile: profile,
		content: content,
		logger:  logger.With("user_id", userID),
	}
}

// UserID returns the user the syncer pushes for.
func (s *Syncer) UserID() string { return s.userID }

// Wait blocks until every background remote call has finished.
func (s *Syncer) Wait() { s.wg.Wait() }

// background runs fn without tying it to any caller's lifetime: remote
// calls cannot be cancelled once issued.
func (s *Syncer) background(op string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := fn(context.Background())
		metrics.RecordSync(op, err)
		if err != nil {
			s.logger.Warn("remote sync failed, local change kept", "op", op, "error", err)
			return
		}
		s.logger.Debug("remote sync done", "op", op)
	}()
}

// UpdateOnboarding applies patch locally, then pushes the profile and
// preferences.
func (s *Syncer) UpdateOnboarding(patch domain.OnboardingPatch) domain.OnboardingState {
	next := s.stores.Onboarding.Update(patch)
	s.pushProfile(next)
	if patch.Space != nil {
		s.pushPreferences(next.Space, s.stores.Plan.Get())
	}
	return next
}

// CompleteOnboarding latches completion locally, then pushes the profile.
func (s *Syncer) CompleteOnboarding() (domain.OnboardingState, error) {
	next, err := s.stores.Onboarding.Complete()
	if err != nil {
		return next, err
	}
	s.pushProfile(next)
	return next, nil
}

// NextOnboarding advances the wizard. Advancing from the review step
// completes it, which pushes the profile.
func (s *Syncer) NextOnboarding() domain.OnboardingState {
	wasCompleted := s.stores.Onboarding.Get().Completed
	next := s.stores.Onboarding.Next()
	if next.Completed && !wasCompleted {
		s.pushProfile(next)
	}
	return next
}

// SetReminder sets the cadence locally, then pushes preferences.
func (s *Syncer) SetReminder(r domain.Reminder) (domain.PlanState, error) {
	next, err := s.stores.Plan.SetReminder(r)
	if err != nil {
		return next, err
	}
	s.pushPreferences(s.stores.Onboarding.Get().Space, next)
	return next, nil
}

// SetFocus toggles a focus area locally, then pushes preferences.
func (s *Syncer) SetFocus(area domain.FocusArea) (domain.PlanState, error) {
	next, err := s.stores.Plan.SetFocus(area)
	if err != nil {
		return next, err
	}
	s.pushPreferences(s.stores.Onboarding.Get().Space, next)
	return next, nil
}

func (s *Syncer) pushProfile(o domain.OnboardingState) {
	if !s.profile.Configured() {
		return
	}
	p := remote.ProfileFromOnboarding(o)
	s.background("put_profile", func(ctx context.Context) error {
		return s.profile.PutProfile(ctx, s.userID, p)
	})
}

func (s *Syncer) pushPreferences(space domain.SpacePrefs, plan domain.PlanState) {
	if !s.profile.Configured() {
		return
	}
	p := remote.PreferencesFrom(space, plan)
	s.background("put_preferences", func(ctx context.Context) error {
		return s.profile.PutPreferences(ctx, s.userID, p)
	})
}

// PullJournal merges the server-side journal into the local one and returns
// how many entries were added.
func (s *Syncer) PullJournal(ctx context.Context) (int, error) {
	if !s.content.Configured() {
		return 0, ErrNoContentService
	}
	entries, err := s.content.JournalHistory(ctx, s.userID)
	if err != nil {
		return 0, err
	}
	added := s.stores.Journal.MergeJournal(entries)
	if added > 0 {
		s.logger.Info("journal pulled", "added", added, "remote", len(entries))
	}
	return added, nil
}

// FetchInsights lists the insights of a journal.
func (s *Syncer) FetchInsights(ctx context.Context, journalID string) ([]remote.Insight, error) {
	if !s.content.Configured() {
		return nil, ErrNoContentService
	}
	return s.content.Insights(ctx, journalID)
}

// PublishInsight stores a new insight remotely.
func (s *Syncer) PublishInsight(ctx context.Context, in remote.NewInsight) (remote.Insight, error) {
	if !s.content.Configured() {
		return remote.Insight{}, ErrNoContentService
	}
	return s.content.CreateInsight(ctx, in)
}

// Start runs the periodic journal pull until ctx is done. A non-positive
// interval or a missing content service disables it.
func (s *Syncer) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 || !s.content.Configured() {
		s.logger.Info("sync worker disabled", "interval", interval)
		return
	}

	ticker := time.NewTicker(interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		s.logger.Info("sync worker started", "interval", interval)

		s.pullOnce(ctx)
		for {
			select {
			case <-ticker.C:
				s.pullOnce(ctx)
			case <-ctx.Done():
				s.logger.Info("sync worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func (s *Syncer) pullOnce(ctx context.Context) {
	if _, err := s.PullJournal(ctx); err != nil && ctx.Err() == nil {
		s.logger.Warn("sync worker journal pull failed", "error", err)
	}
}
