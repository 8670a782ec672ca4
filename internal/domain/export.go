package domain

import "time"

// ExportVersion is bumped whenever the export layout changes.
const ExportVersion = 1

// ExportData groups the journal-side collections of an export.
type ExportData struct {
	Journal []JournalEntry `json:"journal"`
	Moods   []MoodEntry    `json:"moods"`
	Chat    []ChatMessage  `json:"chat"`
}

// Export is a full, versioned snapshot of local user data.
type Export struct {
	Onboarding OnboardingState `json:"onboarding"`
	Plan       PlanState       `json:"plan"`
	Data       ExportData      `json:"data"`
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exportedAt"`
}
