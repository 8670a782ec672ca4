package domain

// FocusArea is one of the fixed areas a plan can focus on.
type FocusArea string

const (
	FocusReduceStress     FocusArea = "Reduce stress"
	FocusGratitude        FocusArea = "Build gratitude"
	FocusSelfConfidence   FocusArea = "Improve self-confidence"
	FocusBetterSleep      FocusArea = "Better sleep"
	FocusClarity          FocusArea = "Focus & clarity"
	FocusEmotionalBalance FocusArea = "Emotional balance"
)

// FocusAreas lists every known focus area in display order.
var FocusAreas = []FocusArea{
	FocusReduceStress,
	FocusGratitude,
	FocusSelfConfidence,
	FocusBetterSleep,
	FocusClarity,
	FocusEmotionalBalance,
}

// Valid reports whether a is a known focus area.
func (a FocusArea) Valid() bool {
	for _, known := range FocusAreas {
		if a == known {
			return true
		}
	}
	return false
}

// Reminder is the check-in reminder cadence.
type Reminder string

const (
	ReminderOff    Reminder = "off"
	ReminderDaily  Reminder = "daily"
	ReminderWeekly Reminder = "weekly"
)

// Valid reports whether r is a known cadence.
func (r Reminder) Valid() bool {
	return r == ReminderOff || r == ReminderDaily || r == ReminderWeekly
}

// Plan capacity limits.
const (
	MaxFocusAreas = 2
	MaxMicroGoals = 3
)

// MicroGoal is a small, checkable goal.
type MicroGoal struct {
	ID   string    `json:"id"`
	Text string    `json:"text"`
	Area FocusArea `json:"area,omitempty"`
	Done bool      `json:"done"`
}

// PlanState is the persisted plan record.
type PlanState struct {
	Chosen   map[string]bool `json:"chosen"`
	Focus    []FocusArea     `json:"focus"`
	Goals    []MicroGoal     `json:"goals"`
	Reminder Reminder        `json:"reminder"`
}

// DefaultPlan returns an empty plan.
func DefaultPlan() PlanState {
	return PlanState{
		Chosen:   map[string]bool{},
		Focus:    []FocusArea{},
		Goals:    []MicroGoal{},
		Reminder: ReminderOff,
	}
}
