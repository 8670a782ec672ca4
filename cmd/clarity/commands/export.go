package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var exportOut string

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all local data as JSON",
		Long: `Write a versioned snapshot of the journal, moods, chat, onboarding and
plan.

Examples:
  clarity export > backup.json
  clarity export --out backup.json`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}
	cmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to file instead of stdout")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	snap := a.stores.Export(time.Now())
	if exportOut == "" {
		return printJSON(cmd, snap)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	if err := os.WriteFile(exportOut, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", exportOut, err)
	}
	info(cmd, "✓ Exported to %s", exportOut)
	return nil
}
