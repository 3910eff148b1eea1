package pbp

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyClock is returned by ParseClock for blank or placeholder clock cells
	ErrEmptyClock = errors.New("empty clock")

	// ErrNoPlays is returned when a game has no plays to normalize
	ErrNoPlays = errors.New("no plays to normalize")

	// ErrUnknownSport is returned when no period rules exist for a sport
	ErrUnknownSport = errors.New("unknown sport")
)

// MalformedClockError reports a clock string that matches no known format
type MalformedClockError struct {
	Text   string
	Reason string
}

func (e *MalformedClockError) Error() string {
	return fmt.Sprintf("malformed clock %q: %s", e.Text, e.Reason)
}

// UnresolvedPeriodLabelError reports a period heading that cannot be mapped to a period number
type UnresolvedPeriodLabelError struct {
	Label string
}

func (e *UnresolvedPeriodLabelError) Error() string {
	return fmt.Sprintf("cannot resolve period label %q", e.Label)
}

// InconsistentScoreRowError reports a scoring-context play without a running score.
// It is never returned to callers; the prior score is carried forward and the error is logged.
type InconsistentScoreRowError struct {
	PeriodLabel string
	Description string
}

func (e *InconsistentScoreRowError) Error() string {
	return fmt.Sprintf("play %q in %q has no running score", e.Description, e.PeriodLabel)
}
