package fallback

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const chatSchema = `
CREATE TABLE message (ROWID INTEGER PRIMARY KEY, text TEXT, is_from_me INTEGER, date INTEGER);
CREATE TABLE chat (ROWID INTEGER PRIMARY KEY);
CREATE TABLE handle (ROWID INTEGER PRIMARY KEY, id TEXT);
CREATE TABLE chat_message_join (chat_id INTEGER, message_id INTEGER);
CREATE TABLE chat_handle_join (chat_id INTEGER, handle_id INTEGER);`

// seedChatDB builds a minimal Messages database with one conversation per
// handle and the given messages.
func seedChatDB(t *testing.T, handle string, msgs []Message) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(chatSchema)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO chat (ROWID) VALUES (1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO handle (ROWID, id) VALUES (1, ?)`, handle)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO chat_handle_join (chat_id, handle_id) VALUES (1, 1)`)
	require.NoError(t, err)
	for _, m := range msgs {
		raw := m.Time.UnixNano() - int64(appleEpochOffset)*1e9
		fromMe := 0
		if m.FromMe {
			fromMe = 1
		}
		_, err = db.Exec(`INSERT INTO message (ROWID, text, is_from_me, date) VALUES (?, ?, ?, ?)`,
			m.RowID, m.Text, fromMe, raw)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO chat_message_join (chat_id, message_id) VALUES (1, ?)`, m.RowID)
		require.NoError(t, err)
	}
	return path
}

func TestChatDB_AfterReturnsNewerMessagesInOrder(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	path := seedChatDB(t, "+15551234567", []Message{
		{RowID: 10, Text: "old", Time: now.Add(-time.Hour)},
		{RowID: 11, Text: "2", Time: now},
		{RowID: 12, Text: "done", Time: now.Add(time.Minute), FromMe: true},
	})

	store, err := OpenChatDB(path, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenChatDB failed: %v", err)
	}
	defer store.Close()

	msgs, err := store.After(context.Background(), "+15551234567", 10)
	if err != nil {
		t.Fatalf("After failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages after rowid 10, got %d", len(msgs))
	}
	if msgs[0].RowID != 11 || msgs[0].Text != "2" || msgs[0].FromMe {
		t.Errorf("unexpected first message: %+v", msgs[0])
	}
	if !msgs[0].Time.Equal(now) {
		t.Errorf("timestamp round trip: got %v want %v", msgs[0].Time, now)
	}
	if msgs[1].RowID != 12 || !msgs[1].FromMe {
		t.Errorf("unexpected second message: %+v", msgs[1])
	}
}

func TestChatDB_LatestRowID(t *testing.T) {
	now := time.Now()
	path := seedChatDB(t, "+15551234567", []Message{
		{RowID: 3, Text: "a", Time: now},
		{RowID: 7, Text: "b", Time: now},
	})

	store, err := OpenChatDB(path, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenChatDB failed: %v", err)
	}
	defer store.Close()

	rowID, err := store.LatestRowID(context.Background(), "+15551234567")
	if err != nil {
		t.Fatalf("LatestRowID failed: %v", err)
	}
	if rowID != 7 {
		t.Errorf("expected rowid 7, got %d", rowID)
	}

	rowID, err = store.LatestRowID(context.Background(), "+19990000000")
	if err != nil {
		t.Fatalf("LatestRowID for unknown handle failed: %v", err)
	}
	if rowID != 0 {
		t.Errorf("expected 0 for unknown handle, got %d", rowID)
	}
}

func TestChatDB_FormattedRecipientMatchesBareHandle(t *testing.T) {
	now := time.Now()
	path := seedChatDB(t, "5551234567", []Message{
		{RowID: 1, Text: "1", Time: now},
	})

	store, err := OpenChatDB(path, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenChatDB failed: %v", err)
	}
	defer store.Close()

	msgs, err := store.After(context.Background(), "+1 (555) 123-4567", 0)
	if err != nil {
		t.Fatalf("After failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("normalized pattern should match bare handle, got %d messages", len(msgs))
	}
}

func TestHandlePatterns(t *testing.T) {
	cases := []struct {
		in         string
		normalized string
	}{
		{"+1 (555) 123-4567", "%5551234567%"},
		{"+15551234567", "%5551234567%"},
		{"15551234567", "%5551234567%"},
		{"5551234567", "%5551234567%"},
		{"user@example.com", "%user@example.com%"},
	}
	for _, tc := range cases {
		raw, norm := handlePatterns(tc.in)
		if raw != "%"+tc.in+"%" {
			t.Errorf("handlePatterns(%q) raw = %q", tc.in, raw)
		}
		if norm != tc.normalized {
			t.Errorf("handlePatterns(%q) normalized = %q, want %q", tc.in, norm, tc.normalized)
		}
	}
}

func TestAppleTime(t *testing.T) {
	// Seconds since the Apple epoch, the pre-High Sierra format.
	if got := appleTime(60); !got.Equal(time.Unix(appleEpochOffset+60, 0)) {
		t.Errorf("seconds form: got %v", got)
	}
	// Nanoseconds since the Apple epoch.
	raw := int64(700000000) * 1e9
	want := time.Unix(appleEpochOffset+700000000, 0)
	if got := appleTime(raw); !got.Equal(want) {
		t.Errorf("nanoseconds form: got %v want %v", got, want)
	}
	if got := appleTime(0); !got.Equal(time.Unix(appleEpochOffset, 0)) {
		t.Errorf("zero date: got %v", got)
	}
}
