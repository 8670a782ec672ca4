package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SelJom/ClarityAI/internal/domain"
)

var (
	moodNote string
	moodDate string
)

// NewMoodCmd creates the mood command group.
func NewMoodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mood",
		Short: "Record daily mood",
		Long: `Record one mood sample per day, on a 1 to 5 scale.

Recording twice on the same day replaces the earlier sample.

Examples:
  clarity mood add 4
  clarity mood add 2 --note "rough meeting" --date 2026-03-14
  clarity mood list`,
	}

	add := &cobra.Command{
		Use:   "add <1-5>",
		Short: "Record the mood for a day",
		Args:  cobra.ExactArgs(1),
		RunE:  runMoodAdd,
	}
	add.Flags().StringVar(&moodNote, "note", "", "Optional note")
	add.Flags().StringVar(&moodDate, "date", "", "Day as YYYY-MM-DD (defaults to today, UTC)")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "list",
			Short: "List recorded moods",
			Args:  cobra.NoArgs,
			RunE:  runMoodList,
		},
	)
	return cmd
}

func runMoodAdd(cmd *cobra.Command, args []string) error {
	score, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("mood must be a number, got %q", args[0])
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	var entry domain.MoodEntry
	if moodDate == "" {
		entry, err = a.stores.Journal.AddMood(score, moodNote)
	} else {
		entry, err = a.stores.Journal.AddMoodOn(moodDate, score, moodNote)
	}
	if err != nil {
		return fmt.Errorf("recording mood: %w", err)
	}
	if outputFormat == "json" {
		return printJSON(cmd, entry)
	}
	info(cmd, "✓ Mood %d recorded for %s", entry.Mood, entry.Date)
	return nil
}

func runMoodList(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	moods := a.stores.Journal.Moods()
	if outputFormat == "json" {
		return printJSON(cmd, moods)
	}
	if len(moods) == 0 {
		info(cmd, "No moods recorded")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "DATE\tMOOD\tNOTE\n")
	for _, m := range moods {
		fmt.Fprintf(w, "%s\t%d\t%s\n", m.Date, m.Mood, truncate(m.Note, 40))
	}
	return w.Flush()
}
