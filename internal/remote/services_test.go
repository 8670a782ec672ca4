package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/SelJom/ClarityAI/internal/domain"
)

func TestProfileRoundTrip(t *testing.T) {
	t.Parallel()

	var stored []byte
	c := newFakeServer(t, func(r chi.Router) {
		r.Put("/users/{id}/profile", func(w http.ResponseWriter, r *http.Request) {
			if chi.URLParam(r, "id") != "u 1" {
				t.Errorf("user id = %q", chi.URLParam(r, "id"))
			}
			var p map[string]any
			_ = json.NewDecoder(r.Body).Decode(&p)
			stored, _ = json.Marshal(p)
			reply(http.StatusOK, `{"status": "ok"}`)(w, r)
		})
		r.Get("/users/{id}/profile", func(w http.ResponseWriter, r *http.Request) {
			reply(http.StatusOK, string(stored))(w, r)
		})
	})
	svc := NewProfileService(c)

	o := domain.DefaultOnboarding()
	o.Identity = domain.Identity{Name: "Ada", FavoriteAnimal: "owl"}
	o.Completed = true

	if err := svc.PutProfile(context.Background(), "u 1", ProfileFromOnboarding(o)); err != nil {
		t.Fatalf("PutProfile() error = %v", err)
	}
	got, err := svc.GetProfile(context.Background(), "u 1")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if got.Identity() != o.Identity || !got.Onboarded {
		t.Errorf("GetProfile() = %+v", got)
	}
}

func TestPreferencesMapping(t *testing.T) {
	t.Parallel()

	plan := domain.DefaultPlan()
	plan.Focus = []domain.FocusArea{domain.FocusBetterSleep}
	plan.Reminder = domain.ReminderWeekly
	space := domain.SpacePrefs{VoiceNotes: true, ToneColor: "rose"}

	p := PreferencesFrom(space, plan)
	if p.Reminder != "weekly" || len(p.Focus) != 1 || p.Focus[0] != "Better sleep" {
		t.Errorf("PreferencesFrom() = %+v", p)
	}
	if p.Space() != space {
		t.Errorf("Space() = %+v, want %+v", p.Space(), space)
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	c := newFakeServer(t, func(r chi.Router) {
		r.Post("/sessions/login", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["password"] == "right" {
				reply(http.StatusOK, `{"user_id": 42, "session_token": "tok"}`)(w, r)
				return
			}
			reply(http.StatusOK, `{"detail": "bad credentials"}`)(w, r)
		})
	})
	svc := NewProfileService(c)

	sess, err := svc.Login(context.Background(), "a@b.c", "right")
	if err != nil || sess.UserID != "42" || sess.Token != "tok" {
		t.Errorf("Login() = %+v, %v", sess, err)
	}

	_, err = svc.Login(context.Background(), "a@b.c", "wrong")
	if !errors.Is(err, ErrLoginFailed) || err.Error() != "login failed: bad credentials" {
		t.Errorf("Login(wrong) error = %v", err)
	}
}

func TestJournalHistory(t *testing.T) {
	t.Parallel()

	c := newFakeServer(t, func(r chi.Router) {
		r.Get("/v1/journal/{id}", reply(http.StatusOK, `{"entries": [
			{"id": 3, "created_at": "2026-02-01T08:00:00.123456", "content": "newest"},
			{"id": 2, "created_at": "2026-01-31T08:00:00Z", "content": ""},
			{"id": 1, "created_at": "garbage", "content": "oldest"}
		]}`))
	})

	entries, err := NewContentService(c).JournalHistory(context.Background(), "u1")
	if err != nil {
		t.Fatalf("JournalHistory() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v, want 2", entries)
	}
	want := time.Date(2026, 2, 1, 8, 0, 0, 123456000, time.UTC)
	if entries[0].ID != "remote-3" || !entries[0].CreatedAt.Equal(want) || entries[0].Tag != domain.TagJournal {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if !entries[1].CreatedAt.IsZero() {
		t.Errorf("unparseable timestamp should map to zero time, got %v", entries[1].CreatedAt)
	}
}

func TestInsights(t *testing.T) {
	t.Parallel()

	var created NewInsight
	c := newFakeServer(t, func(r chi.Router) {
		r.Get("/journals/{id}/insights", reply(http.StatusOK, `[
			{"id": 1, "journal_id": 9, "summary": "sleep helps", "sentiment_score": 0.5, "emotion_tags": {"calm": 0.8}}
		]`))
		r.Get("/journals/empty/insights", reply(http.StatusOK, `{"insights": []}`))
		r.Post("/insights", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&created)
			reply(http.StatusOK, `{"id": 2, "journal_id": 9}`)(w, r)
		})
	})
	svc := NewContentService(c)

	list, err := svc.Insights(context.Background(), "9")
	if err != nil {
		t.Fatalf("Insights() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != "1" || list[0].JournalID != "9" || list[0].EmotionTags["calm"] != 0.8 {
		t.Errorf("Insights() = %+v", list)
	}

	empty, err := svc.Insights(context.Background(), "empty")
	if err != nil || len(empty) != 0 {
		t.Errorf("Insights(empty) = %+v, %v", empty, err)
	}

	out, err := svc.CreateInsight(context.Background(), NewInsight{JournalID: 9, Summary: "walks help"})
	if err != nil {
		t.Fatalf("CreateInsight() error = %v", err)
	}
	if created.Summary != "walks help" || created.EmotionTags == nil {
		t.Errorf("server received %+v", created)
	}
	if out.ID != "2" || out.Summary != "walks help" {
		t.Errorf("CreateInsight() = %+v", out)
	}
}
