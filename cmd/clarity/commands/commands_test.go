package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/SelJom/ClarityAI/internal/domain"
	"github.com/SelJom/ClarityAI/internal/stream"
)

// runCLI executes the root command against a database in dir.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"PROFILE_API_URL", "CONTENT_API_URL", "AGENT_WS_URL", "AUDIO_DIR"} {
		t.Setenv(key, "")
	}
	t.Setenv("CLARITY_USER_ID", "cli-user")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--db", filepath.Join(dir, "clarity.db")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func decodeOutput[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return v
}

func findSub(cmd *cobra.Command, use string) *cobra.Command {
	for _, sub := range cmd.Commands() {
		if sub.Name() == use {
			return sub
		}
	}
	return nil
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd.Use != "clarity" {
		t.Errorf("Use = %q, want %q", cmd.Use, "clarity")
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("Short and Long descriptions should not be empty")
	}

	for _, name := range []string{"journal", "mood", "plan", "onboarding", "chat", "export", "login", "logout", "whoami", "version"} {
		if findSub(cmd, name) == nil {
			t.Errorf("subcommand %q not found", name)
		}
	}

	tests := []struct {
		flagName  string
		shorthand string
		defValue  string
	}{
		{"db", "", ""},
		{"verbose", "v", "false"},
		{"quiet", "q", "false"},
		{"format", "", "table"},
	}
	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := cmd.PersistentFlags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("--%s flag not found", tt.flagName)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("shorthand = %q, want %q", flag.Shorthand, tt.shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("default = %q, want %q", flag.DefValue, tt.defValue)
			}
		})
	}
}

func TestSubcommandFlags(t *testing.T) {
	root := NewRootCmd()

	tests := []struct {
		path []string
		flag string
	}{
		{[]string{"journal", "add"}, "tag"},
		{[]string{"mood", "add"}, "note"},
		{[]string{"mood", "add"}, "date"},
		{[]string{"plan", "goal", "add"}, "area"},
		{[]string{"chat", "send"}, "timeout"},
		{[]string{"export"}, "out"},
		{[]string{"login"}, "email"},
	}
	for _, tt := range tests {
		cmd := root
		for _, name := range tt.path {
			if cmd = findSub(cmd, name); cmd == nil {
				t.Fatalf("%v: subcommand %q not found", tt.path, name)
			}
		}
		if cmd.Flags().Lookup(tt.flag) == nil {
			t.Errorf("%v: --%s flag not found", tt.path, tt.flag)
		}
	}
}

func TestJournalAddAndList(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "journal", "add", "first entry")
	if err != nil {
		t.Fatalf("journal add: %v", err)
	}
	if !strings.Contains(out, "Added entry") {
		t.Errorf("output = %q", out)
	}

	out, err = runCLI(t, dir, "--format", "json", "journal", "list")
	if err != nil {
		t.Fatalf("journal list: %v", err)
	}
	entries := decodeOutput[[]domain.JournalEntry](t, out)
	if len(entries) != 1 || entries[0].Content != "first entry" || entries[0].Tag != domain.TagJournal {
		t.Errorf("entries = %+v", entries)
	}

	if _, err := runCLI(t, dir, "journal", "rm", entries[0].ID); err != nil {
		t.Errorf("journal rm: %v", err)
	}
	if _, err := runCLI(t, dir, "journal", "rm", entries[0].ID); err == nil {
		t.Error("second journal rm should fail")
	}
}

func TestJournalAddValidation(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCLI(t, dir, "journal", "add", "   "); err == nil {
		t.Error("blank entry should fail")
	}
	if _, err := runCLI(t, dir, "journal", "add", "--tag", "Note", "x"); err == nil {
		t.Error("unknown tag should fail")
	}
}

func TestJournalPullWithoutContentService(t *testing.T) {
	if _, err := runCLI(t, t.TempDir(), "journal", "pull"); err == nil {
		t.Error("pull without CONTENT_API_URL should fail")
	}
}

func TestMoodAddUpserts(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCLI(t, dir, "mood", "add", "2", "--date", "2026-03-14"); err != nil {
		t.Fatalf("mood add: %v", err)
	}
	if _, err := runCLI(t, dir, "mood", "add", "4", "--note", "better", "--date", "2026-03-14"); err != nil {
		t.Fatalf("mood add: %v", err)
	}

	out, err := runCLI(t, dir, "--format", "json", "mood", "list")
	if err != nil {
		t.Fatalf("mood list: %v", err)
	}
	moods := decodeOutput[[]domain.MoodEntry](t, out)
	if len(moods) != 1 || moods[0].Mood != 4 || moods[0].Note != "better" {
		t.Errorf("moods = %+v", moods)
	}

	if _, err := runCLI(t, dir, "mood", "add", "9"); err == nil {
		t.Error("mood 9 should fail")
	}
	if _, err := runCLI(t, dir, "mood", "add", "great"); err == nil {
		t.Error("non-numeric mood should fail")
	}
}

func TestPlanCommands(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCLI(t, dir, "plan", "focus", "Better sleep"); err != nil {
		t.Fatalf("plan focus: %v", err)
	}
	if _, err := runCLI(t, dir, "plan", "focus", "Juggling"); err == nil {
		t.Error("unknown focus area should fail")
	}
	if _, err := runCLI(t, dir, "plan", "reminder", "weekly"); err != nil {
		t.Fatalf("plan reminder: %v", err)
	}
	for _, text := range []string{"a", "b", "c"} {
		if _, err := runCLI(t, dir, "plan", "goal", "add", text); err != nil {
			t.Fatalf("goal add %s: %v", text, err)
		}
	}
	if _, err := runCLI(t, dir, "plan", "goal", "add", "d"); err == nil {
		t.Error("fourth goal should fail")
	}

	out, err := runCLI(t, dir, "--format", "json", "plan", "show")
	if err != nil {
		t.Fatalf("plan show: %v", err)
	}
	plan := decodeOutput[domain.PlanState](t, out)
	if len(plan.Focus) != 1 || plan.Reminder != domain.ReminderWeekly || len(plan.Goals) != 3 {
		t.Errorf("plan = %+v", plan)
	}

	if _, err := runCLI(t, dir, "plan", "goal", "done", plan.Goals[1].ID); err != nil {
		t.Errorf("goal done: %v", err)
	}
	if _, err := runCLI(t, dir, "plan", "goal", "rm", "missing"); err == nil {
		t.Error("removing a missing goal should fail")
	}
}

func TestOnboardingNextCompletes(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCLI(t, dir, "onboarding", "complete"); err == nil {
		t.Error("complete before the review step should fail")
	}
	if _, err := runCLI(t, dir, "onboarding", "name", "--name", "Ada"); err != nil {
		t.Fatalf("onboarding name: %v", err)
	}
	if _, err := runCLI(t, dir, "onboarding", "step", "5"); err != nil {
		t.Fatalf("onboarding step: %v", err)
	}
	if _, err := runCLI(t, dir, "onboarding", "next"); err != nil {
		t.Fatalf("onboarding next: %v", err)
	}

	out, err := runCLI(t, dir, "--format", "json", "onboarding", "show")
	if err != nil {
		t.Fatalf("onboarding show: %v", err)
	}
	o := decodeOutput[domain.OnboardingState](t, out)
	if !o.Completed || o.Identity.Name != "Ada" {
		t.Errorf("onboarding = %+v", o)
	}
}

func TestChatSendWithoutEndpointKeepsMessage(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "chat", "send", "hello")
	if err == nil || !strings.Contains(err.Error(), stream.ErrNotConfigured.Error()) {
		t.Fatalf("chat send error = %v, want not configured", err)
	}

	out, err := runCLI(t, dir, "--format", "json", "chat", "show")
	if err != nil {
		t.Fatalf("chat show: %v", err)
	}
	chat := decodeOutput[[]domain.ChatMessage](t, out)
	if len(chat) != 2 || chat[0].Text != "hello" {
		t.Errorf("chat = %+v, want user message and sealed placeholder", chat)
	}

	if _, err := runCLI(t, dir, "chat", "archive"); err != nil {
		t.Fatalf("chat archive: %v", err)
	}
	out, _ = runCLI(t, dir, "--format", "json", "journal", "list")
	entries := decodeOutput[[]domain.JournalEntry](t, out)
	if len(entries) != 1 || entries[0].Content != "You: hello" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "backup.json")

	if _, err := runCLI(t, dir, "journal", "add", "exported"); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, dir, "export", "--out", target); err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	snap := decodeOutput[domain.Export](t, string(data))
	if snap.Version != domain.ExportVersion || len(snap.Data.Journal) != 1 {
		t.Errorf("export = %+v", snap)
	}
}

func TestWhoamiUsesConfiguredUser(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--format", "json", "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	me := decodeOutput[map[string]any](t, out)
	if me["user_id"] != "cli-user" || me["anonymous"] != false {
		t.Errorf("whoami = %v", me)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	t.Setenv("CLARITY_PASSWORD", "")
	if _, err := runCLI(t, t.TempDir(), "login"); err == nil {
		t.Error("login without credentials should fail")
	}
}

func TestWaitForReply(t *testing.T) {
	t.Parallel()

	calls := 0
	inFlight := func() (domain.ChatMessage, bool) {
		calls++
		if calls < 3 {
			return domain.ChatMessage{Text: strings.Repeat("x", calls)}, true
		}
		return domain.ChatMessage{}, false
	}
	reply, err := waitForReply(context.Background(), inFlight)
	if err != nil {
		t.Fatalf("waitForReply() error = %v", err)
	}
	if reply.Text != "xx" {
		t.Errorf("reply = %q, want last in-flight text", reply.Text)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = waitForReply(ctx, func() (domain.ChatMessage, bool) { return domain.ChatMessage{}, true })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("waitForReply() error = %v, want deadline exceeded", err)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"a longer sentence", 10, "a longe..."},
		{"line\nbreak", 20, "line break"},
		{"héllo wörld", 8, "héllo..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	SetVersion("1.2.3", "abc", "today")
	defer SetVersion("dev", "none", "unknown")

	cmd := NewVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)

	if !strings.Contains(out.String(), "clarity 1.2.3") {
		t.Errorf("output = %q", out.String())
	}
}
