package models

import (
	"fmt"
	"strconv"
	"time"
)

// PlayRecord is one row of a game's play-by-play table
type PlayRecord struct {
	Season                 int       `json:"season" db:"season"`
	SportID                Sport     `json:"sport_id" db:"sport_id"`
	GameID                 int       `json:"game_id" db:"game_id"`
	GameTimeStr            string    `json:"game_time_str" db:"game_time_str"`
	PeriodSecondsRemaining int       `json:"period_seconds_remaining" db:"period_seconds_remaining"`
	GameSecondsRemaining   int       `json:"game_seconds_remaining" db:"game_seconds_remaining"`
	ClockMilliseconds      int       `json:"clock_milliseconds" db:"clock_milliseconds"`
	PeriodNum              int       `json:"period_num" db:"period_num"`
	EventTeam              *int      `json:"event_team,omitempty" db:"event_team"`
	EventText              string    `json:"event_text" db:"event_text"`
	IsOvertime             bool      `json:"is_overtime" db:"is_overtime"`
	AwayScore              int       `json:"away_score" db:"away_score"`
	HomeScore              int       `json:"home_score" db:"home_score"`
	EventNum               int       `json:"event_num" db:"event_num"`
	GameDatetime           time.Time `json:"game_datetime" db:"game_datetime"`
	StadiumName            string    `json:"stadium_name" db:"stadium_name"`
	Attendance             int       `json:"attendance" db:"attendance"`
	AwayTeamID             int       `json:"away_team_id" db:"away_team_id"`
	AwayTeamName           string    `json:"away_team_name" db:"away_team_name"`
	HomeTeamID             int       `json:"home_team_id" db:"home_team_id"`
	HomeTeamName           string    `json:"home_team_name" db:"home_team_name"`
}

// PlayColumns is the column order of a play-by-play table
var PlayColumns = []string{
	"season",
	"sport_id",
	"game_id",
	"game_time_str",
	"period_seconds_remaining",
	"game_seconds_remaining",
	"clock_milliseconds",
	"period_num",
	"event_team",
	"event_text",
	"is_overtime",
	"away_score",
	"home_score",
	"event_num",
	"game_datetime",
	"stadium_name",
	"attendance",
	"away_team_id",
	"away_team_name",
	"home_team_id",
	"home_team_name",
}

// Strings returns the record's fields in PlayColumns order
func (r *PlayRecord) Strings() []string {
	eventTeam := ""
	if r.EventTeam != nil {
		eventTeam = strconv.Itoa(*r.EventTeam)
	}
	return []string{
		strconv.Itoa(r.Season),
		string(r.SportID),
		strconv.Itoa(r.GameID),
		r.GameTimeStr,
		strconv.Itoa(r.PeriodSecondsRemaining),
		strconv.Itoa(r.GameSecondsRemaining),
		strconv.Itoa(r.ClockMilliseconds),
		strconv.Itoa(r.PeriodNum),
		eventTeam,
		r.EventText,
		strconv.FormatBool(r.IsOvertime),
		strconv.Itoa(r.AwayScore),
		strconv.Itoa(r.HomeScore),
		strconv.Itoa(r.EventNum),
		r.GameDatetime.Format(time.RFC3339),
		r.StadiumName,
		strconv.Itoa(r.Attendance),
		strconv.Itoa(r.AwayTeamID),
		r.AwayTeamName,
		strconv.Itoa(r.HomeTeamID),
		r.HomeTeamName,
	}
}

// PlayRecordFromStrings is the inverse of Strings
func PlayRecordFromStrings(fields []string) (*PlayRecord, error) {
	if len(fields) != len(PlayColumns) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(PlayColumns), len(fields))
	}

	p := &fieldParser{fields: fields}
	r := &PlayRecord{
		Season:                 p.int(0),
		SportID:                Sport(fields[1]),
		GameID:                 p.int(2),
		GameTimeStr:            fields[3],
		PeriodSecondsRemaining: p.int(4),
		GameSecondsRemaining:   p.int(5),
		ClockMilliseconds:      p.int(6),
		PeriodNum:              p.int(7),
		EventText:              fields[9],
		IsOvertime:             p.bool(10),
		AwayScore:              p.int(11),
		HomeScore:              p.int(12),
		EventNum:               p.int(13),
		GameDatetime:           p.time(14),
		StadiumName:            fields[15],
		Attendance:             p.int(16),
		AwayTeamID:             p.int(17),
		AwayTeamName:           fields[18],
		HomeTeamID:             p.int(19),
		HomeTeamName:           fields[20],
	}
	if fields[8] != "" {
		team := p.int(8)
		r.EventTeam = &team
	}
	if p.err != nil {
		return nil, p.err
	}
	return r, nil
}

// fieldParser keeps the first conversion error so rows decode in one pass
type fieldParser struct {
	fields []string
	err    error
}

func (p *fieldParser) int(i int) int {
	v, err := strconv.Atoi(p.fields[i])
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", PlayColumns[i], err)
	}
	return v
}

func (p *fieldParser) bool(i int) bool {
	v, err := strconv.ParseBool(p.fields[i])
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", PlayColumns[i], err)
	}
	return v
}

func (p *fieldParser) time(i int) time.Time {
	v, err := time.Parse(time.RFC3339, p.fields[i])
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", PlayColumns[i], err)
	}
	return v
}
