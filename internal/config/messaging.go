package config

import (
	"os"
	"path/filepath"
	"time"
)

// MessagingConfig configures the human fallback channel (iMessage on macOS).
type MessagingConfig struct {
	// Phone number or iCloud address escalations are sent to
	Recipient string `yaml:"recipient"`

	// Path to the Messages database (requires Full Disk Access)
	ChatDBPath string `yaml:"chat_db_path"`

	// How often the reply dispatcher scans for new messages
	PollInterval string `yaml:"poll_interval"`

	// How long an escalation waits for a reply before giving up
	ReplyTimeout string `yaml:"reply_timeout"`
}

// GetPollInterval returns the reply scan interval as a duration.
func (c MessagingConfig) GetPollInterval() time.Duration {
	return duration(c.PollInterval, 2*time.Second)
}

// GetReplyTimeout returns the reply deadline as a duration.
func (c MessagingConfig) GetReplyTimeout() time.Duration {
	return duration(c.ReplyTimeout, 10*time.Minute)
}

func defaultChatDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "Messages", "chat.db")
}
