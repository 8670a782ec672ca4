package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SelJom/ClarityAI/internal/domain"
)

var journalTag string

// NewJournalCmd creates the journal command group.
func NewJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Manage journal entries",
		Long: `Add, list and remove journal entries.

Examples:
  clarity journal add "Long walk, felt lighter"
  echo "from a file" | clarity journal add
  clarity journal list --format json
  clarity journal pull`,
	}

	add := &cobra.Command{
		Use:   "add [text]",
		Short: "Add a journal entry",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runJournalAdd,
	}
	add.Flags().StringVar(&journalTag, "tag", string(domain.TagJournal), "Entry tag: Journal or Conversation")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "list",
			Short: "List journal entries",
			Args:  cobra.NoArgs,
			RunE:  runJournalList,
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Remove a journal entry",
			Args:  cobra.ExactArgs(1),
			RunE:  runJournalRemove,
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every journal entry",
			Args:  cobra.NoArgs,
			RunE:  runJournalClear,
		},
		&cobra.Command{
			Use:   "pull",
			Short: "Merge the server-side journal into the local one",
			Args:  cobra.NoArgs,
			RunE:  runJournalPull,
		},
	)
	return cmd
}

func runJournalAdd(cmd *cobra.Command, args []string) error {
	text, err := textArg(cmd, args)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	entry, err := a.stores.Journal.AddJournalTagged(text, domain.EntryTag(journalTag))
	if err != nil {
		return fmt.Errorf("adding entry: %w", err)
	}
	if outputFormat == "json" {
		return printJSON(cmd, entry)
	}
	info(cmd, "✓ Added entry %s", entry.ID)
	return nil
}

func runJournalList(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	entries := a.stores.Journal.Journal()
	if outputFormat == "json" {
		return printJSON(cmd, entries)
	}
	if len(entries) == 0 {
		info(cmd, "No journal entries")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tTAG\tCREATED\tCONTENT\n")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Tag, e.CreatedAt.Local().Format("2006-01-02 15:04"), truncate(e.Content, 50))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	info(cmd, "\nTotal: %d entr(y/ies)", len(entries))
	return nil
}

func runJournalRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.stores.Journal.RemoveJournal(args[0]); err != nil {
		return fmt.Errorf("removing %s: %w", args[0], err)
	}
	info(cmd, "✓ Removed entry %s", args[0])
	return nil
}

func runJournalClear(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	a.stores.Journal.ClearJournal()
	info(cmd, "✓ Journal cleared")
	return nil
}

func runJournalPull(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	added, err := a.sync.PullJournal(cmd.Context())
	if err != nil {
		return fmt.Errorf("pulling journal: %w", err)
	}
	info(cmd, "✓ Pulled %d new entr(y/ies)", added)
	return nil
}
