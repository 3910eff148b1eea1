package pbp

import (
	"fmt"
	"strconv"
	"strings"
)

// Clock is a parsed clock reading
type Clock struct {
	Minutes      int
	Seconds      int
	Milliseconds int
}

// TotalSeconds returns the reading in whole seconds
func (c Clock) TotalSeconds() int {
	return c.Minutes*60 + c.Seconds
}

// IsZero reports whether the reading is exactly 00:00
func (c Clock) IsZero() bool {
	return c.Minutes == 0 && c.Seconds == 0 && c.Milliseconds == 0
}

func (c Clock) String() string {
	return FormatClock(c.TotalSeconds())
}

// ClockFromSeconds builds a reading from a whole number of seconds
func ClockFromSeconds(seconds int) Clock {
	if seconds < 0 {
		seconds = 0
	}
	return Clock{Minutes: seconds / 60, Seconds: seconds % 60}
}

// FormatClock formats seconds as MM:SS
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

var placeholderClocks = map[string]bool{
	"":      true,
	"-":     true,
	"--":    true,
	"--:--": true,
}

// ParseClock parses "MM:SS" or "MM:SS:ms" clock text.
// Blank and placeholder cells return ErrEmptyClock, anything else unrecognized a *MalformedClockError.
func ParseClock(text string) (Clock, error) {
	t := strings.TrimSpace(text)
	if placeholderClocks[t] {
		return Clock{}, ErrEmptyClock
	}

	parts := strings.Split(t, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Clock{}, &MalformedClockError{Text: text, Reason: fmt.Sprintf("expected 2 or 3 components, got %d", len(parts))}
	}

	values := make([]int, 3)
	for i, part := range parts {
		v, err := parseComponent(part)
		if err != nil {
			return Clock{}, &MalformedClockError{Text: text, Reason: err.Error()}
		}
		values[i] = v
	}

	if values[1] >= 60 {
		return Clock{}, &MalformedClockError{Text: text, Reason: "seconds out of range"}
	}

	return Clock{Minutes: values[0], Seconds: values[1], Milliseconds: values[2]}, nil
}

func parseComponent(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty component")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-numeric component %q", s)
		}
	}
	return strconv.Atoi(s)
}
