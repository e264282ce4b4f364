package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pollnerd/internal/fallback"
)

var messageWait time.Duration

// messageCmd exercises the iMessage path end to end: it sends a test
// message and optionally waits for new replies, which is the quickest way
// to confirm Full Disk Access and the recipient setting.
var messageCmd = &cobra.Command{
	Use:   "message [text]",
	Short: "Send a test iMessage to the configured recipient",
	Long: `Sends a message through the same path escalations use, then watches the
Messages database for replies until --wait elapses. Use this to verify
the recipient address and that the process can read chat.db.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMessage,
}

func init() {
	messageCmd.Flags().DurationVar(&messageWait, "wait", 0, "Watch for replies this long after sending")
}

func runMessage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Messaging.Recipient == "" {
		return fmt.Errorf("messaging recipient not configured (set POLLNERD_RECIPIENT)")
	}

	text := "pollnerd test message"
	if len(args) == 1 {
		text = args[0]
	}

	store, err := fallback.OpenChatDB(cfg.Messaging.ChatDBPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	baseline, err := store.LatestRowID(cmd.Context(), cfg.Messaging.Recipient)
	if err != nil {
		return fmt.Errorf("reading chat.db (is Full Disk Access granted?): %w", err)
	}

	sender := fallback.NewAppleScriptSender(sendTimeout, logger)
	if err := sender.Send(cmd.Context(), cfg.Messaging.Recipient, text); err != nil {
		return err
	}
	fmt.Printf("Sent to %s\n", cfg.Messaging.Recipient)

	if messageWait <= 0 {
		return nil
	}

	fmt.Printf("Watching for replies for %s...\n", messageWait)
	deadline := time.Now().Add(messageWait)
	cursor := baseline
	for time.Now().Before(deadline) {
		time.Sleep(cfg.Messaging.GetPollInterval())
		msgs, err := store.After(cmd.Context(), cfg.Messaging.Recipient, cursor)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			cursor = m.RowID
			dir := "them"
			if m.FromMe {
				dir = "me"
			}
			fmt.Printf("  [%s] %s: %s\n", m.Time.Format("15:04:05"), dir, m.Text)
		}
	}
	return nil
}
