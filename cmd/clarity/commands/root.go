// Package commands implements the clarity CLI.
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	dbPath       string
	verbose      bool
	quiet        bool
	outputFormat string
)

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clarity",
		Short: "Journal, mood, plan and chat from the terminal",
		Long: `clarity works on the same local database as the Clarity server.

Every change is applied locally first. Profile and preference changes are
then pushed to the remote services when PROFILE_API_URL is set, and the
journal can be pulled from CONTENT_API_URL.

Examples:
  clarity journal add "Slept better today"
  clarity mood add 4 --note "calm"
  clarity plan goal add "Walk after lunch" --area "Better sleep"
  clarity chat send "I feel stuck"`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (defaults to DB_PATH)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print requested data")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format: table or json")

	cmd.AddCommand(
		NewJournalCmd(),
		NewMoodCmd(),
		NewPlanCmd(),
		NewOnboardingCmd(),
		NewChatCmd(),
		NewExportCmd(),
		NewLoginCmd(),
		NewLogoutCmd(),
		NewWhoamiCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the CLI until it finishes or is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
