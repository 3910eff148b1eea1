package pbp

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EndOfPeriodText is the description of the row appended after each period
const EndOfPeriodText = "End of Period"

// Score is a running score
type Score struct {
	Away int
	Home int
}

// RawPlay is one scraped play-by-play row
type RawPlay struct {
	PeriodLabel string
	ClockText   string
	ActingTeam  *int
	Description string
	Score       *Score
}

// NormalizedPlay is a RawPlay with its clock resolved against the period rules
type NormalizedPlay struct {
	RawPlay

	PeriodNumber           int
	IsOvertime             bool
	PeriodSecondsRemaining int
	GameSecondsRemaining   int
	ClockMilliseconds      int
	AwayScore              int
	HomeScore              int
	Synthetic              bool
	SequenceNumber         int
}

// Result is the output of one normalization run
type Result struct {
	Plays       []NormalizedPlay
	Orientation Orientation
	// Skipped counts rows dropped for an unparseable clock
	Skipped int
	// ScoreGaps counts scoring rows that had no running score
	ScoreGaps int
}

// Normalizer converts one game's raw plays into normalized plays.
// It holds no per-game state and is safe for concurrent use.
type Normalizer struct {
	spec        PeriodSpec
	logger      zerolog.Logger
	orientation *Orientation
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithLogger sets the logger used for skipped-row warnings
func WithLogger(logger zerolog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// WithOrientation fixes the clock orientation instead of detecting it
func WithOrientation(o Orientation) Option {
	return func(n *Normalizer) {
		n.orientation = &o
	}
}

// NewNormalizer creates a normalizer for the given period rules
func NewNormalizer(spec PeriodSpec, opts ...Option) *Normalizer {
	n := &Normalizer{
		spec:   spec,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type segment struct {
	label  string
	period int
	plays  []RawPlay
}

// Normalize resolves every play's period and clock. Plays must be in
// chronological order, grouped by period. A period label that cannot be
// resolved aborts the whole game with no output.
func (n *Normalizer) Normalize(plays []RawPlay) (*Result, error) {
	if len(plays) == 0 {
		return nil, ErrNoPlays
	}

	segments, err := n.segments(plays)
	if err != nil {
		return nil, err
	}

	orientation := CountDown
	if n.orientation != nil {
		orientation = *n.orientation
	} else {
		orientation, err = DetectOrientation(plays)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{
		Plays:       make([]NormalizedPlay, 0, len(plays)+len(segments)),
		Orientation: orientation,
	}

	var score Score
	for _, seg := range segments {
		score = n.normalizeSegment(seg, orientation, score, result)
	}

	for i := range result.Plays {
		result.Plays[i].SequenceNumber = i + 1
	}
	return result, nil
}

func (n *Normalizer) segments(plays []RawPlay) ([]segment, error) {
	var segments []segment
	for _, play := range plays {
		if len(segments) > 0 && segments[len(segments)-1].label == play.PeriodLabel {
			last := &segments[len(segments)-1]
			last.plays = append(last.plays, play)
			continue
		}
		period, err := ResolvePeriodLabel(play.PeriodLabel, n.spec)
		if err != nil {
			return nil, err
		}
		segments = append(segments, segment{label: play.PeriodLabel, period: period, plays: []RawPlay{play}})
	}
	return segments, nil
}

func (n *Normalizer) normalizeSegment(seg segment, orientation Orientation, score Score, result *Result) Score {
	p := seg.period
	length := n.spec.PeriodLength(p)
	overtime := n.spec.IsOvertime(p)

	periodRemaining := length
	millis := 0

	for _, play := range seg.plays {
		np := NormalizedPlay{
			RawPlay:      play,
			PeriodNumber: p,
			IsOvertime:   overtime,
		}

		if IsBoundaryMarker(play.Description) {
			periodRemaining = 0
			millis = 0
			np.PeriodSecondsRemaining = 0
			np.GameSecondsRemaining = n.spec.GameSecondsAfter(p)
		} else {
			clock, err := ParseClock(play.ClockText)
			switch {
			case errors.Is(err, ErrEmptyClock):
				// carry the previous reading
			case err != nil:
				result.Skipped++
				n.logger.Warn().
					Err(err).
					Str("period", seg.label).
					Str("description", play.Description).
					Msg("Skipping play with unparseable clock")
				continue
			default:
				periodRemaining = n.periodRemaining(clock, p, orientation)
				millis = clock.Milliseconds
			}
			np.PeriodSecondsRemaining = periodRemaining
			np.GameSecondsRemaining = n.gameRemaining(p, periodRemaining)
		}
		np.ClockMilliseconds = millis

		if play.Score != nil {
			score = *play.Score
		} else if !IsBoundaryMarker(play.Description) && !IsAdministrative(play.Description) {
			result.ScoreGaps++
			n.logger.Debug().
				Err(&InconsistentScoreRowError{PeriodLabel: seg.label, Description: play.Description}).
				Msg("Carrying previous score forward")
		}
		np.AwayScore = score.Away
		np.HomeScore = score.Home

		result.Plays = append(result.Plays, np)
	}

	result.Plays = append(result.Plays, NormalizedPlay{
		RawPlay: RawPlay{
			PeriodLabel: seg.label,
			ClockText:   n.endOfPeriodClock(p, orientation),
			Description: EndOfPeriodText,
		},
		PeriodNumber:           p,
		IsOvertime:             overtime,
		PeriodSecondsRemaining: 0,
		GameSecondsRemaining:   n.spec.GameSecondsAfter(p),
		AwayScore:              score.Away,
		HomeScore:              score.Home,
		Synthetic:              true,
	})
	return score
}

// periodRemaining converts a clock reading to seconds left in period p, clamped to the period length
func (n *Normalizer) periodRemaining(clock Clock, p int, orientation Orientation) int {
	length := n.spec.PeriodLength(p)
	raw := clock.TotalSeconds()

	remaining := raw
	if orientation == CountUp {
		elapsed := raw
		if offset := n.continuousOffset(p); offset > 0 && raw >= offset {
			elapsed = raw - offset
		}
		remaining = length - elapsed
	}

	if remaining < 0 {
		return 0
	}
	if remaining > length {
		return length
	}
	return remaining
}

// continuousOffset is the clock value a continuous count-up feed shows at the start of period p.
// The clock keeps running into overtime, so overtime periods are offset too.
func (n *Normalizer) continuousOffset(p int) int {
	if !n.spec.ContinuousClock {
		return 0
	}
	return n.spec.ElapsedBefore(p)
}

func (n *Normalizer) gameRemaining(p, periodRemaining int) int {
	if n.spec.IsOvertime(p) {
		return periodRemaining
	}
	remaining := n.spec.RegulationSeconds() - n.spec.ElapsedBefore(p) - (n.spec.PeriodLength(p) - periodRemaining)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (n *Normalizer) endOfPeriodClock(p int, orientation Orientation) string {
	if orientation == CountUp {
		return ClockFromSeconds(n.continuousOffset(p) + n.spec.PeriodLength(p)).String()
	}
	return Clock{}.String()
}

var administrativeDescriptions = []string{
	"game start",
	"game end confirmed",
	"period start",
	"period end confirmed",
	"jumpball startperiod",
	"timeout commercial",
}

// IsAdministrative reports whether a description is a bookkeeping row that carries no score
func IsAdministrative(description string) bool {
	d := strings.ToLower(strings.TrimSpace(description))
	d = strings.TrimSuffix(d, ";")
	for _, admin := range administrativeDescriptions {
		if d == admin {
			return true
		}
	}
	return false
}
