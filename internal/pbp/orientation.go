package pbp

import (
	"errors"
	"fmt"
	"strings"
)

// Orientation is the direction a game's clock runs
type Orientation int

const (
	CountDown Orientation = iota
	CountUp
)

func (o Orientation) String() string {
	switch o {
	case CountUp:
		return "count-up"
	case CountDown:
		return "count-down"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

var boundaryUnits = []string{"period", "quarter", "half", "game"}

// IsBoundaryMarker reports whether a description marks the end of a period
// ("End of 1st Period", "End of Game")
func IsBoundaryMarker(description string) bool {
	d := strings.ToLower(description)
	if !strings.Contains(d, "end of") {
		return false
	}
	for _, unit := range boundaryUnits {
		if strings.Contains(d, unit) {
			return true
		}
	}
	return false
}

// DetectOrientation decides once per game whether the clock counts up or down.
// The first non-boundary play with a clock reading decides: 00:00 means count-up.
// A game with no clock readings at all is treated as count-down.
func DetectOrientation(plays []RawPlay) (Orientation, error) {
	for _, play := range plays {
		if IsBoundaryMarker(play.Description) {
			continue
		}
		clock, err := ParseClock(play.ClockText)
		if errors.Is(err, ErrEmptyClock) {
			continue
		}
		if err != nil {
			return CountDown, fmt.Errorf("detect clock orientation: %w", err)
		}
		if clock.IsZero() {
			return CountUp, nil
		}
		return CountDown, nil
	}
	return CountDown, nil
}
