package fallback

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AppleScriptSender sends iMessages through the Messages app via osascript.
type AppleScriptSender struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewAppleScriptSender creates the sender. A zero timeout defaults to 10s.
func NewAppleScriptSender(timeout time.Duration, logger *zap.Logger) *AppleScriptSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AppleScriptSender{timeout: timeout, logger: logger.Named("imessage")}
}

// Send delivers text to recipient (phone number or iCloud address).
func (s *AppleScriptSender) Send(ctx context.Context, recipient, text string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	script := fmt.Sprintf(`
tell application "Messages"
	set targetService to 1st account whose service type = iMessage
	set targetBuddy to participant "%s" of targetService
	send "%s" to targetBuddy
end tell`, escapeAppleScript(recipient), escapeAppleScript(text))

	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("osascript send to %s: %w (%s)", recipient, err, strings.TrimSpace(string(out)))
	}

	s.logger.Debug("message sent",
		zap.String("recipient", recipient),
		zap.Int("length", len(text)))
	return nil
}

func escapeAppleScript(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
