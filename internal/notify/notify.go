// Package notify posts operator-facing notifications for events that do
// not go through the escalation channel, such as giving up on a question.
package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"pollnerd/internal/poll"
)

// New picks the best notifier for the host: desktop notifications through
// osascript on macOS, the log otherwise.
func New(logger *zap.Logger) poll.Notifier {
	if runtime.GOOS == "darwin" {
		if _, err := exec.LookPath("osascript"); err == nil {
			return &Desktop{timeout: 5 * time.Second, logger: logger.Named("notify")}
		}
	}
	return &Log{logger: logger.Named("notify")}
}

// Desktop posts macOS notification-center banners.
type Desktop struct {
	timeout time.Duration
	logger  *zap.Logger
}

// Notify shows a banner with the given title and body.
func (n *Desktop) Notify(ctx context.Context, title, body string) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	script := fmt.Sprintf(`display notification "%s" with title "%s"`,
		escapeAppleScript(body), escapeAppleScript(title))
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("osascript notification: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	n.logger.Debug("posted notification", zap.String("title", title))
	return nil
}

// Log is the fallback notifier for hosts without a notification center.
// Events land in the log at warn level so they stand out of the info flow.
type Log struct {
	logger *zap.Logger
}

func (n *Log) Notify(ctx context.Context, title, body string) error {
	n.logger.Warn("notification", zap.String("title", title), zap.String("body", body))
	return nil
}

func escapeAppleScript(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
