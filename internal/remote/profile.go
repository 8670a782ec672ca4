package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/SelJom/ClarityAI/internal/domain"
)

// ErrLoginFailed is wrapped by Login when the service does not return a
// session.
var ErrLoginFailed = errors.New("login failed")

// Profile is the remote shape of the onboarding identity.
type Profile struct {
	Name           string `json:"name,omitempty"`
	Nickname       string `json:"nickname,omitempty"`
	DateOfBirth    string `json:"date_of_birth,omitempty"`
	FavoriteAnimal string `json:"favorite_animal,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Archetype      string `json:"archetype,omitempty"`
	Onboarded      bool   `json:"onboarded"`
}

// Preferences is the remote shape of space and plan preferences.
type Preferences struct {
	CheckIns   string   `json:"check_ins,omitempty"`
	GuideStyle string   `json:"guide_style,omitempty"`
	VoiceNotes bool     `json:"voice_notes"`
	Mood       string   `json:"mood,omitempty"`
	ToneColor  string   `json:"tone_color,omitempty"`
	Focus      []string `json:"focus"`
	Reminder   string   `json:"reminder,omitempty"`
}

// Session is the result of a successful login.
type Session struct {
	UserID string `json:"user_id"`
	Token  string `json:"session_token"`
}

// ProfileFromOnboarding maps the onboarding record to a Profile.
func ProfileFromOnboarding(o domain.OnboardingState) Profile {
	return Profile{
		Name:           o.Identity.Name,
		Nickname:       o.Identity.Nickname,
		DateOfBirth:    o.Identity.DateOfBirth,
		FavoriteAnimal: o.Identity.FavoriteAnimal,
		AvatarURL:      o.Identity.AvatarURL,
		Archetype:      o.Inner.Archetype,
		Onboarded:      o.Completed,
	}
}

// Identity maps a Profile back to the onboarding identity group.
func (p Profile) Identity() domain.Identity {
	return domain.Identity{
		Name:           p.Name,
		Nickname:       p.Nickname,
		DateOfBirth:    p.DateOfBirth,
		FavoriteAnimal: p.FavoriteAnimal,
		AvatarURL:      p.AvatarURL,
	}
}

// PreferencesFrom maps the space group and the plan to Preferences.
func PreferencesFrom(space domain.SpacePrefs, plan domain.PlanState) Preferences {
	focus := make([]string, 0, len(plan.Focus))
	for _, a := range plan.Focus {
		focus = append(focus, string(a))
	}
	return Preferences{
		CheckIns:   space.CheckIns,
		GuideStyle: space.GuideStyle,
		VoiceNotes: space.VoiceNotes,
		Mood:       space.Mood,
		ToneColor:  space.ToneColor,
		Focus:      focus,
		Reminder:   string(plan.Reminder),
	}
}

// Space maps Preferences back to the onboarding space group.
func (p Preferences) Space() domain.SpacePrefs {
	return domain.SpacePrefs{
		CheckIns:   p.CheckIns,
		GuideStyle: p.GuideStyle,
		VoiceNotes: p.VoiceNotes,
		Mood:       p.Mood,
		ToneColor:  p.ToneColor,
	}
}

// ProfileService wraps the profile/preferences service.
type ProfileService struct {
	client *Client
}

// NewProfileService creates a ProfileService on c.
func NewProfileService(c *Client) *ProfileService {
	return &ProfileService{client: c}
}

// Configured reports whether the service has a base URL.
func (s *ProfileService) Configured() bool {
	return s != nil && s.client.Configured()
}

func userPath(userID, resource string) string {
	return "/users/" + url.PathEscape(userID) + "/" + resource
}

// GetProfile fetches the profile of userID.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (Profile, error) {
	var p Profile
	err := s.getInto(ctx, userPath(userID, "profile"), &p)
	return p, err
}

// PutProfile replaces the profile of userID.
func (s *ProfileService) PutProfile(ctx context.Context, userID string, p Profile) error {
	_, err := s.client.Put(ctx, userPath(userID, "profile"), p)
	return err
}

// GetPreferences fetches the preferences of userID.
func (s *ProfileService) GetPreferences(ctx context.Context, userID string) (Preferences, error) {
	var p Preferences
	err := s.getInto(ctx, userPath(userID, "preferences"), &p)
	return p, err
}

// PutPreferences replaces the preferences of userID.
func (s *ProfileService) PutPreferences(ctx context.Context, userID string, p Preferences) error {
	_, err := s.client.Put(ctx, userPath(userID, "preferences"), p)
	return err
}

// Login exchanges credentials for a session. It is a stub: credentials are
// sent as-is and the returned token is not validated.
func (s *ProfileService) Login(ctx context.Context, email, password string) (Session, error) {
	body, err := s.client.Post(ctx, "/sessions/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return Session{}, err
	}

	userID := gjson.GetBytes(body, "user_id")
	token := gjson.GetBytes(body, "session_token")
	if userID.String() == "" || token.String() == "" {
		detail := gjson.GetBytes(body, "detail").String()
		if detail == "" {
			detail = "invalid login response"
		}
		return Session{}, fmt.Errorf("%w: %s", ErrLoginFailed, detail)
	}
	return Session{UserID: userID.String(), Token: token.String()}, nil
}

func (s *ProfileService) getInto(ctx context.Context, path string, v any) error {
	body, err := s.client.Get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
