package state

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/SelJom/ClarityAI/internal/domain"
	"github.com/SelJom/ClarityAI/internal/store"
)

func TestExportSnapshot(t *testing.T) {
	t.Parallel()
	stores := Open(context.Background(), store.NewMemory(), nil)

	_, _ = stores.Journal.AddJournal("entry")
	_, _ = stores.Journal.AddMood(7, "")
	stores.Journal.BeginTurn("hi")
	stores.Onboarding.Update(domain.OnboardingPatch{Identity: &domain.Identity{Name: "Ada"}})
	stores.Plan.Toggle("walk")

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	exp := stores.Export(at)

	if exp.Version != domain.ExportVersion || !exp.ExportedAt.Equal(at) || exp.ExportedAt.Location() != time.UTC {
		t.Errorf("header = version %d at %v", exp.Version, exp.ExportedAt)
	}
	if len(exp.Data.Journal) != 1 || len(exp.Data.Moods) != 1 || len(exp.Data.Chat) != 2 {
		t.Errorf("data = %+v", exp.Data)
	}
	if exp.Onboarding.Identity.Name != "Ada" || !exp.Plan.Chosen["walk"] {
		t.Errorf("export = %+v", exp)
	}

	raw, err := json.Marshal(exp)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(raw, &shape); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"onboarding", "plan", "data", "version", "exportedAt"} {
		if _, ok := shape[k]; !ok {
			t.Errorf("export JSON missing %q", k)
		}
	}
}
