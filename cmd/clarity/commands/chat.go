package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SelJom/ClarityAI/internal/domain"
)

var chatTimeout time.Duration

// replyPollInterval is how often chat send checks for a finished reply.
const replyPollInterval = 100 * time.Millisecond

// NewChatCmd creates the chat command group.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant",
		Long: `Send messages to the assistant and manage the transcript.

The reply streams into the local transcript; chat send waits for it.

Examples:
  clarity chat send "I can't sleep"
  clarity chat show
  clarity chat archive`,
	}

	send := &cobra.Command{
		Use:   "send <text>",
		Short: "Send a message and wait for the reply",
		Args:  cobra.ExactArgs(1),
		RunE:  runChatSend,
	}
	send.Flags().DurationVar(&chatTimeout, "timeout", 2*time.Minute, "How long to wait for the reply")

	cmd.AddCommand(
		send,
		&cobra.Command{Use: "show", Short: "Show the transcript", Args: cobra.NoArgs, RunE: runChatShow},
		&cobra.Command{Use: "clear", Short: "Clear the transcript", Args: cobra.NoArgs, RunE: runChatClear},
		&cobra.Command{Use: "archive", Short: "Save the transcript as a journal entry and clear it", Args: cobra.NoArgs, RunE: runChatArchive},
	)
	return cmd
}

func runChatSend(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	client := a.streamClient()
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), chatTimeout)
	defer cancel()

	if err := client.SendUserMessage(ctx, args[0]); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	reply, err := waitForReply(ctx, a.stores.Journal.InFlight)
	if err != nil {
		return err
	}
	if outputFormat == "json" {
		return printJSON(cmd, reply)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
	return err
}

// waitForReply polls until no message is in flight and returns the last
// in-flight message seen.
func waitForReply(ctx context.Context, inFlight func() (domain.ChatMessage, bool)) (domain.ChatMessage, error) {
	last, ok := inFlight()
	if !ok {
		return last, nil
	}

	ticker := time.NewTicker(replyPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return last, fmt.Errorf("waiting for reply: %w", ctx.Err())
		case <-ticker.C:
			msg, ok := inFlight()
			if !ok {
				return last, nil
			}
			last = msg
		}
	}
}

func runChatShow(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	chat := a.stores.Journal.Chat()
	if outputFormat == "json" {
		return printJSON(cmd, chat)
	}
	if len(chat) == 0 {
		info(cmd, "No messages")
		return nil
	}
	for _, m := range chat {
		who := "Clarity"
		if m.Role == domain.RoleUser {
			who = "You"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", who, m.Text)
	}
	return nil
}

func runChatClear(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	a.stores.Journal.ClearChat()
	info(cmd, "✓ Chat cleared")
	return nil
}

func runChatArchive(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	entry, err := a.stores.Journal.ArchiveChat()
	if err != nil {
		return fmt.Errorf("archiving chat: %w", err)
	}
	info(cmd, "✓ Chat archived as entry %s", entry.ID)
	return nil
}
