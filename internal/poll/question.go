package poll

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Question is one displayed poll question. Identity is derived from the
// normalized text plus the option set; the poll surface exposes no stable
// question ID, so a changed text or option list is by definition a new
// question.
type Question struct {
	Text    string
	Options []string

	key string
}

// NewQuestion builds a Question from raw extracted strings. Whitespace is
// collapsed so immaterial formatting differences between poll cycles do not
// register as a new question. Returns nil if the text or option list is
// empty after normalization.
func NewQuestion(text string, options []string) *Question {
	text = normalize(text)
	if text == "" || len(options) == 0 {
		return nil
	}

	opts := make([]string, 0, len(options))
	for _, o := range options {
		opts = append(opts, normalize(o))
	}

	h := sha256.New()
	h.Write([]byte(text))
	for _, o := range opts {
		h.Write([]byte{0x1f})
		h.Write([]byte(o))
	}

	return &Question{
		Text:    text,
		Options: opts,
		key:     hex.EncodeToString(h.Sum(nil)),
	}
}

// Key returns the identity hash of this question.
func (q *Question) Key() string { return q.key }

// Same reports whether other is the same question by identity.
func (q *Question) Same(other *Question) bool {
	return other != nil && q.key == other.key
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
