package state

import (
	"errors"
	"fmt"

	"github.com/SelJom/ClarityAI/internal/domain"
)

// Persisted snapshot keys. They are part of the on-disk format and must not
// change within a build.
const (
	JournalKey    = "clarity_journal_v1"
	MoodsKey      = "clarity_moods_v1"
	ChatKey       = "clarity_chat_v1"
	OnboardingKey = "clarity_onboarding_v1"
	PlanKey       = "clarity_plan_v1"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrEmptyEntry      = errors.New("entry text is empty")
	ErrInvalidTag      = errors.New("invalid entry tag")
	ErrInvalidDate     = fmt.Errorf("date must use the %s layout", domain.DateLayout)
	ErrMoodOutOfRange  = fmt.Errorf("mood must be between %d and %d", domain.MinMood, domain.MaxMood)
	ErrNotFinalStep    = errors.New("onboarding can only be completed from the final step")
	ErrInvalidStep     = fmt.Errorf("step must be between 0 and %d", domain.LastOnboardingStep)
	ErrInvalidFocus    = errors.New("unknown focus area")
	ErrInvalidReminder = errors.New("unknown reminder cadence")
)
