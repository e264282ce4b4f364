package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pollnerd/internal/config"
)

// Window is a daily wall-clock activity window. Start is inclusive, End is
// exclusive, both offsets from local midnight.
type Window struct {
	Start time.Duration
	End   time.Duration
}

// Contains reports whether t's local time of day falls inside the window.
func (w Window) Contains(t time.Time) bool {
	clock := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
	return clock >= w.Start && clock < w.End
}

// ParseClockTime parses "HH:MM" or "HH:MM:SS" into an offset from midnight.
func ParseClockTime(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("clock time %q: want HH:MM or HH:MM:SS", s)
	}
	var units [3]int
	limits := [3]int{23, 59, 59}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("clock time %q: %w", s, err)
		}
		if n < 0 || n > limits[i] {
			return 0, fmt.Errorf("clock time %q: field %d out of range", s, i)
		}
		units[i] = n
	}
	return time.Duration(units[0])*time.Hour +
		time.Duration(units[1])*time.Minute +
		time.Duration(units[2])*time.Second, nil
}

// SessionDefinition is one monitored class, immutable after construction.
// A definition without a window is always active. A definition whose
// configured window failed validation is disabled and never activates.
type SessionDefinition struct {
	Name      string
	Section   string
	Latitude  float64
	Longitude float64

	window   *Window
	disabled bool
}

// FromConfig builds a definition from its config record. A malformed window
// (bad syntax, start at or after end, or only one bound declared) yields a
// disabled definition along with the configuration error, so the caller can
// report it once without dropping the entry.
func FromConfig(cc config.ClassConfig) (*SessionDefinition, error) {
	def := &SessionDefinition{
		Name:      cc.Name,
		Section:   cc.Section,
		Latitude:  cc.Latitude,
		Longitude: cc.Longitude,
	}
	if cc.StartTime == "" && cc.EndTime == "" {
		return def, nil
	}

	fail := func(err error) (*SessionDefinition, error) {
		def.disabled = true
		return def, fmt.Errorf("class %q: %w", cc.Name, err)
	}
	if cc.StartTime == "" || cc.EndTime == "" {
		return fail(fmt.Errorf("window needs both start_time and end_time"))
	}
	start, err := ParseClockTime(cc.StartTime)
	if err != nil {
		return fail(err)
	}
	end, err := ParseClockTime(cc.EndTime)
	if err != nil {
		return fail(err)
	}
	if start >= end {
		return fail(fmt.Errorf("window start %s is not before end %s", cc.StartTime, cc.EndTime))
	}
	def.window = &Window{Start: start, End: end}
	return def, nil
}

// ActiveAt reports whether the definition should be monitored at t.
func (d *SessionDefinition) ActiveAt(t time.Time) bool {
	if d.disabled {
		return false
	}
	if d.window == nil {
		return true
	}
	return d.window.Contains(t)
}

// Disabled reports whether the definition was rejected at load time.
func (d *SessionDefinition) Disabled() bool {
	return d.disabled
}

// WindowString formats the active window for display.
func (d *SessionDefinition) WindowString() string {
	if d.disabled {
		return "disabled (bad window)"
	}
	if d.window == nil {
		return "always"
	}
	fmtOff := func(off time.Duration) string {
		off = off.Round(time.Second)
		h := off / time.Hour
		m := (off % time.Hour) / time.Minute
		s := (off % time.Minute) / time.Second
		if s == 0 {
			return fmt.Sprintf("%02d:%02d", h, m)
		}
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmtOff(d.window.Start) + "-" + fmtOff(d.window.End)
}
