package fallback

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ChatDB reads the macOS Messages database (~/Library/Messages/chat.db) as
// a MessageStore. The database is opened read-only; reading it requires
// Full Disk Access for the running process.
type ChatDB struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenChatDB opens the Messages database at path in read-only mode.
func OpenChatDB(path string, logger *zap.Logger) (*ChatDB, error) {
	if path == "" {
		return nil, fmt.Errorf("chat database path not configured")
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("open chat database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &ChatDB{db: db, logger: logger.Named("chatdb")}, nil
}

// Close releases the database handle.
func (c *ChatDB) Close() error {
	return c.db.Close()
}

const messageQuery = `
SELECT DISTINCT m.ROWID, m.text, m.is_from_me, m.date
FROM message m
JOIN chat_message_join cmj ON m.ROWID = cmj.message_id
JOIN chat ch ON cmj.chat_id = ch.ROWID
JOIN chat_handle_join chj ON ch.ROWID = chj.chat_id
JOIN handle h ON chj.handle_id = h.ROWID
WHERE (h.id LIKE ? OR h.id LIKE ?) AND m.ROWID > ?
ORDER BY m.ROWID ASC`

const latestRowIDQuery = `
SELECT COALESCE(MAX(m.ROWID), 0)
FROM message m
JOIN chat_message_join cmj ON m.ROWID = cmj.message_id
JOIN chat ch ON cmj.chat_id = ch.ROWID
JOIN chat_handle_join chj ON ch.ROWID = chj.chat_id
JOIN handle h ON chj.handle_id = h.ROWID
WHERE (h.id LIKE ? OR h.id LIKE ?)`

// LatestRowID returns the newest message ROWID for the recipient, 0 if the
// conversation is empty.
func (c *ChatDB) LatestRowID(ctx context.Context, recipient string) (int64, error) {
	p1, p2 := handlePatterns(recipient)
	var rowID int64
	if err := c.db.QueryRowContext(ctx, latestRowIDQuery, p1, p2).Scan(&rowID); err != nil {
		return 0, fmt.Errorf("latest rowid for %s: %w", recipient, err)
	}
	return rowID, nil
}

// After returns the recipient's messages newer than afterRowID in ascending
// ROWID order.
func (c *ChatDB) After(ctx context.Context, recipient string, afterRowID int64) ([]Message, error) {
	p1, p2 := handlePatterns(recipient)
	rows, err := c.db.QueryContext(ctx, messageQuery, p1, p2, afterRowID)
	if err != nil {
		return nil, fmt.Errorf("query messages for %s: %w", recipient, err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			rowID    int64
			text     sql.NullString
			fromMe   int
			appleRaw int64
		)
		if err := rows.Scan(&rowID, &text, &fromMe, &appleRaw); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		out = append(out, Message{
			RowID:  rowID,
			Text:   text.String,
			Time:   appleTime(appleRaw),
			FromMe: fromMe != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}

// handlePatterns returns LIKE patterns for the raw recipient and its
// normalized phone-number form, so "+1 (555) 123-4567" still matches the
// handle table's "+15551234567".
func handlePatterns(recipient string) (string, string) {
	normalized := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(recipient)
	if strings.HasPrefix(normalized, "+1") {
		normalized = normalized[2:]
	} else if strings.HasPrefix(normalized, "1") && len(normalized) == 11 {
		normalized = normalized[1:]
	}
	return "%" + recipient + "%", "%" + normalized + "%"
}

// appleEpochOffset is the Unix timestamp of 2001-01-01T00:00:00Z, the epoch
// Messages stores dates against.
const appleEpochOffset = 978307200

// appleTime converts a Messages date column value. Modern macOS stores
// nanoseconds since the Apple epoch; very old databases stored seconds.
func appleTime(raw int64) time.Time {
	if raw > 1e15 {
		return time.Unix(raw/1e9+appleEpochOffset, raw%1e9)
	}
	return time.Unix(raw+appleEpochOffset, 0)
}
