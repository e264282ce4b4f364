package notify

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestEscapeAppleScript(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`plain`, `plain`},
		{`say "hi"`, `say \"hi\"`},
		{`back\slash`, `back\\slash`},
		{`"\"`, `\"\\\"`},
	}
	for _, tc := range cases {
		if got := escapeAppleScript(tc.in); got != tc.want {
			t.Errorf("escapeAppleScript(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLogNotifierNeverFails(t *testing.T) {
	n := &Log{logger: zap.NewNop()}
	if err := n.Notify(context.Background(), "unresolved question", "no reply arrived"); err != nil {
		t.Errorf("log notifier returned %v", err)
	}
}
