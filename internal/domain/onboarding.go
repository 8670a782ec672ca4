package domain

// Identity is the "who are you" group of the onboarding wizard.
type Identity struct {
	Name           string `json:"name,omitempty"`
	Nickname       string `json:"nickname,omitempty"`
	DateOfBirth    string `json:"dateOfBirth,omitempty"`
	FavoriteAnimal string `json:"favoriteAnimal,omitempty"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
}

// DisplayName prefers the name over the nickname.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Nickname
}

// ExperienceSignals describes how the user relates to their emotions.
type ExperienceSignals struct {
	CopingPreference     string `json:"copingPreference,omitempty"`
	BaselineWord         string `json:"baselineWord,omitempty"`
	EmotionalGranularity int    `json:"emotionalGranularity,omitempty"`
	ResponseStyle        string `json:"responseStyle,omitempty"`
	JournalingFrequency  string `json:"journalingFrequency,omitempty"`
	Grounding            string `json:"grounding,omitempty"`
}

// GoalsSignals describes what the user wants out of the app.
type GoalsSignals struct {
	Direction          string   `json:"direction,omitempty"`
	HelpWith           []string `json:"helpWith,omitempty"`
	ProgressPreference string   `json:"progressPreference,omitempty"`
	DepthComfort       int      `json:"depthComfort,omitempty"`
	ToneStyle          string   `json:"toneStyle,omitempty"`
}

// InnerWorld holds self-description answers.
type InnerWorld struct {
	ControlOrientation string   `json:"controlOrientation,omitempty"`
	SelfWords          []string `json:"selfWords,omitempty"`
	Phrase             string   `json:"phrase,omitempty"`
	SurpriseNote       string   `json:"surpriseNote,omitempty"`
	Archetype          string   `json:"archetype,omitempty"`
}

// SpacePrefs holds presentation and check-in preferences.
type SpacePrefs struct {
	CheckIns   string `json:"checkIns,omitempty"`
	GuideStyle string `json:"guideStyle,omitempty"`
	VoiceNotes bool   `json:"voiceNotes"`
	Mood       string `json:"mood,omitempty"`
	ToneColor  string `json:"toneColor,omitempty"`
}

// Onboarding wizard positions. The wizard walks one group per step and ends
// on a review step.
const (
	StepIdentity = iota
	StepExperience
	StepGoals
	StepInner
	StepSpace
	StepReview

	LastOnboardingStep = StepReview
)

// OnboardingState is the persisted onboarding record.
type OnboardingState struct {
	Step       int               `json:"step"`
	Identity   Identity          `json:"identity"`
	Experience ExperienceSignals `json:"experience"`
	Goals      GoalsSignals      `json:"goals"`
	Inner      InnerWorld        `json:"inner"`
	Space      SpacePrefs        `json:"space"`
	Completed  bool              `json:"completed"`
}

// DefaultOnboarding returns the record restored by a reset.
func DefaultOnboarding() OnboardingState {
	return OnboardingState{Space: SpacePrefs{VoiceNotes: false}}
}

// OnboardingPatch is a shallow update: every non-nil group replaces the
// whole corresponding group of the record.
type OnboardingPatch struct {
	Identity   *Identity          `json:"identity,omitempty"`
	Experience *ExperienceSignals `json:"experience,omitempty"`
	Goals      *GoalsSignals      `json:"goals,omitempty"`
	Inner      *InnerWorld        `json:"inner,omitempty"`
	Space      *SpacePrefs        `json:"space,omitempty"`
}

// Empty reports whether the patch carries no group.
func (p OnboardingPatch) Empty() bool {
	return p.Identity == nil && p.Experience == nil && p.Goals == nil && p.Inner == nil && p.Space == nil
}

// Apply returns s with the patch merged in.
func (p OnboardingPatch) Apply(s OnboardingState) OnboardingState {
	if p.Identity != nil {
		s.Identity = *p.Identity
	}
	if p.Experience != nil {
		s.Experience = *p.Experience
	}
	if p.Goals != nil {
		s.Goals = *p.Goals
	}
	if p.Inner != nil {
		s.Inner = *p.Inner
	}
	if p.Space != nil {
		s.Space = *p.Space
	}
	return s
}
