package schedule

import (
	"testing"
	"time"

	"pollnerd/internal/config"
)

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"09:30", 9*time.Hour + 30*time.Minute, false},
		{"09:30:15", 9*time.Hour + 30*time.Minute + 15*time.Second, false},
		{"00:00", 0, false},
		{"23:59:59", 24*time.Hour - time.Second, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"09", 0, true},
		{"09:30:15:00", 0, true},
		{"nine:thirty", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClockTime(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClockTime(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClockTime(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClockTime(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: 9 * time.Hour, End: 10 * time.Hour}
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	at := func(h, m, s int) time.Time {
		return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
	}

	if !w.Contains(at(9, 0, 0)) {
		t.Error("window start is inclusive")
	}
	if !w.Contains(at(9, 59, 59)) {
		t.Error("last second inside the window")
	}
	if w.Contains(at(10, 0, 0)) {
		t.Error("window end is exclusive")
	}
	if w.Contains(at(8, 59, 59)) {
		t.Error("before the window")
	}
}

func TestFromConfig(t *testing.T) {
	t.Run("no window means always active", func(t *testing.T) {
		def, err := FromConfig(config.ClassConfig{Name: "cs101", Section: "prof"})
		if err != nil {
			t.Fatalf("FromConfig failed: %v", err)
		}
		if !def.ActiveAt(time.Now()) {
			t.Error("definition without a window should always be active")
		}
		if def.WindowString() != "always" {
			t.Errorf("WindowString = %q", def.WindowString())
		}
	})

	t.Run("valid window", func(t *testing.T) {
		def, err := FromConfig(config.ClassConfig{
			Name: "cs101", Section: "prof",
			StartTime: "09:00", EndTime: "10:30",
		})
		if err != nil {
			t.Fatalf("FromConfig failed: %v", err)
		}
		inside := time.Date(2026, 3, 2, 9, 15, 0, 0, time.Local)
		outside := time.Date(2026, 3, 2, 11, 0, 0, 0, time.Local)
		if !def.ActiveAt(inside) {
			t.Error("expected active inside window")
		}
		if def.ActiveAt(outside) {
			t.Error("expected inactive outside window")
		}
		if def.WindowString() != "09:00-10:30" {
			t.Errorf("WindowString = %q", def.WindowString())
		}
	})

	t.Run("inverted window disables the class", func(t *testing.T) {
		def, err := FromConfig(config.ClassConfig{
			Name: "cs101", Section: "prof",
			StartTime: "10:00", EndTime: "09:00",
		})
		if err == nil {
			t.Fatal("expected configuration error")
		}
		if !def.Disabled() {
			t.Error("definition should be disabled")
		}
		if def.ActiveAt(time.Date(2026, 3, 2, 9, 30, 0, 0, time.Local)) {
			t.Error("disabled definition must never be active")
		}
	})

	t.Run("empty window rejected", func(t *testing.T) {
		def, err := FromConfig(config.ClassConfig{
			Name: "cs101", Section: "prof",
			StartTime: "09:00", EndTime: "09:00",
		})
		if err == nil || !def.Disabled() {
			t.Error("start == end should be rejected")
		}
	})

	t.Run("half-declared window rejected", func(t *testing.T) {
		def, err := FromConfig(config.ClassConfig{
			Name: "cs101", Section: "prof", StartTime: "09:00",
		})
		if err == nil || !def.Disabled() {
			t.Error("start_time without end_time should be rejected")
		}
	})

	t.Run("unparseable time rejected", func(t *testing.T) {
		def, err := FromConfig(config.ClassConfig{
			Name: "cs101", Section: "prof",
			StartTime: "soon", EndTime: "later",
		})
		if err == nil || !def.Disabled() {
			t.Error("garbage times should be rejected")
		}
	})
}
