package models

import (
	"database/sql"
	"time"
)

// Play-by-play ingestion states of a queued game
const (
	GameStatusPending = "pending"
	GameStatusDone    = "done"
	GameStatusFailed  = "failed"
)

// Game is a contest queued for play-by-play ingestion
type Game struct {
	ID        int            `json:"id" db:"id"`
	GameID    int            `json:"game_id" db:"game_id"`
	SportID   Sport          `json:"sport_id" db:"sport_id"`
	Season    sql.NullInt32  `json:"season" db:"season"`
	Status    string         `json:"status" db:"status"`
	PlayCount sql.NullInt32  `json:"play_count" db:"play_count"`
	LastError sql.NullString `json:"last_error" db:"last_error"`
	FetchedAt sql.NullTime   `json:"fetched_at" db:"fetched_at"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// IsPending returns true if the game has not been ingested yet
func (g *Game) IsPending() bool {
	return g.Status == GameStatusPending
}

// IsDone returns true if the game's play-by-play was stored
func (g *Game) IsDone() bool {
	return g.Status == GameStatusDone
}

// IsFailed returns true if the last ingestion attempt failed
func (g *Game) IsFailed() bool {
	return g.Status == GameStatusFailed
}

// GameInfo is the static context of one contest, read from its play-by-play page
type GameInfo struct {
	GameID       int       `json:"game_id"`
	SportID      Sport     `json:"sport_id"`
	Season       int       `json:"season"`
	GameDatetime time.Time `json:"game_datetime"`
	StadiumName  string    `json:"stadium_name"`
	Attendance   int       `json:"attendance"`
	AwayTeamID   int       `json:"away_team_id"`
	AwayTeamName string    `json:"away_team_name"`
	HomeTeamID   int       `json:"home_team_id"`
	HomeTeamName string    `json:"home_team_name"`
}

// Teams returns the away and home teams of the game as Team models
func (gi *GameInfo) Teams() []*Team {
	return []*Team{
		{TeamID: gi.AwayTeamID, SportID: gi.SportID, TeamName: gi.AwayTeamName, LastSeason: sql.NullInt32{Int32: int32(gi.Season), Valid: gi.Season > 0}},
		{TeamID: gi.HomeTeamID, SportID: gi.SportID, TeamName: gi.HomeTeamName, LastSeason: sql.NullInt32{Int32: int32(gi.Season), Valid: gi.Season > 0}},
	}
}
