package domain

import "testing"

func TestOnboardingPatchApplyIsShallow(t *testing.T) {
	t.Parallel()

	s := DefaultOnboarding()
	s.Identity = Identity{Name: "Ada", Nickname: "A"}
	s.Space = SpacePrefs{VoiceNotes: true, ToneColor: "violet"}

	got := OnboardingPatch{Identity: &Identity{Nickname: "Lovelace"}}.Apply(s)

	if got.Identity.Name != "" {
		t.Errorf("Identity.Name = %q, want erased by group replacement", got.Identity.Name)
	}
	if got.Identity.Nickname != "Lovelace" {
		t.Errorf("Identity.Nickname = %q, want Lovelace", got.Identity.Nickname)
	}
	if !got.Space.VoiceNotes || got.Space.ToneColor != "violet" {
		t.Errorf("Space = %+v, want untouched", got.Space)
	}
}

func TestOnboardingPatchEmpty(t *testing.T) {
	t.Parallel()

	if !(OnboardingPatch{}).Empty() {
		t.Error("zero patch should be empty")
	}
	if (OnboardingPatch{Inner: &InnerWorld{}}).Empty() {
		t.Error("patch with a group should not be empty")
	}
}

func TestIdentityDisplayName(t *testing.T) {
	t.Parallel()

	if got := (Identity{Nickname: "Bo"}).DisplayName(); got != "Bo" {
		t.Errorf("DisplayName() = %q, want Bo", got)
	}
	if got := (Identity{Name: "Bob", Nickname: "Bo"}).DisplayName(); got != "Bob" {
		t.Errorf("DisplayName() = %q, want Bob", got)
	}
}

func TestEnumValidation(t *testing.T) {
	t.Parallel()

	if !FocusBetterSleep.Valid() || FocusArea("Juggling").Valid() {
		t.Error("FocusArea.Valid mismatch")
	}
	if !ReminderWeekly.Valid() || Reminder("hourly").Valid() {
		t.Error("Reminder.Valid mismatch")
	}
	if !TagConversation.Valid() || EntryTag("Note").Valid() {
		t.Error("EntryTag.Valid mismatch")
	}
}
