package models

import (
	"database/sql"
	"time"
)

// Team represents a school's team in one sport, as linked from play-by-play pages
type Team struct {
	ID         int           `json:"id" db:"id"`
	TeamID     int           `json:"team_id" db:"team_id"`
	SportID    Sport         `json:"sport_id" db:"sport_id"`
	TeamName   string        `json:"team_name" db:"team_name"`
	LastSeason sql.NullInt32 `json:"last_season" db:"last_season"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
}
