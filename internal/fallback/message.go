// Package fallback escalates low-confidence questions to a human over text
// messaging and resolves their numeric replies back into option indexes.
// The send side is fire-and-forget AppleScript; the receive side reads the
// macOS Messages database with a monotonic ROWID cursor so each reply is
// scanned at most once, in arrival order.
package fallback

import (
	"context"
	"time"
)

// Message is one inbound or outbound text message as stored externally.
type Message struct {
	RowID  int64
	Text   string
	Time   time.Time
	FromMe bool
}

// MessageStore is the read side of the external message store, queryable as
// "messages exchanged with recipient after row N". Implementations never
// mutate the store.
type MessageStore interface {
	// LatestRowID returns the newest ROWID for the recipient's
	// conversation, or 0 when there is none.
	LatestRowID(ctx context.Context, recipient string) (int64, error)

	// After returns messages for the recipient with ROWID greater than
	// afterRowID, in ascending ROWID order.
	After(ctx context.Context, recipient string, afterRowID int64) ([]Message, error)
}

// Sender delivers an outbound message to a recipient. Fire-and-forget:
// a nil error means handed off, not read.
type Sender interface {
	Send(ctx context.Context, recipient, text string) error
}
