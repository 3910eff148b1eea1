package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
)

// PlayRepository stores normalized play-by-play rows
type PlayRepository struct {
	db *Database
}

// ReplaceForGame atomically replaces all stored rows of a game
func (r *PlayRepository) ReplaceForGame(ctx context.Context, sport models.Sport, gameID int, records []models.PlayRecord) error {
	start := time.Now()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM plays WHERE sport_id = $1 AND game_id = $2`, sport, gameID); err != nil {
		observe("delete", "plays", start, err)
		return fmt.Errorf("failed to delete plays: %w", err)
	}

	rows := make([][]interface{}, len(records))
	for i, rec := range records {
		rows[i] = []interface{}{
			string(rec.SportID), rec.GameID, rec.EventNum, rec.Season, rec.GameTimeStr,
			rec.PeriodSecondsRemaining, rec.GameSecondsRemaining, rec.ClockMilliseconds,
			rec.PeriodNum, rec.EventTeam, rec.EventText, rec.IsOvertime,
			rec.AwayScore, rec.HomeScore, rec.GameDatetime, rec.StadiumName, rec.Attendance,
			rec.AwayTeamID, rec.AwayTeamName, rec.HomeTeamID, rec.HomeTeamName,
		}
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"plays"}, playCopyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		observe("copy", "plays", start, err)
		return fmt.Errorf("failed to copy plays: %w", err)
	}

	err = tx.Commit(ctx)
	observe("replace", "plays", start, err)
	if err != nil {
		return fmt.Errorf("failed to commit plays: %w", err)
	}
	return nil
}

var playCopyColumns = []string{
	"sport_id", "game_id", "event_num", "season", "game_time_str",
	"period_seconds_remaining", "game_seconds_remaining", "clock_milliseconds",
	"period_num", "event_team", "event_text", "is_overtime",
	"away_score", "home_score", "game_datetime", "stadium_name", "attendance",
	"away_team_id", "away_team_name", "home_team_id", "home_team_name",
}

// ListByGame returns a game's rows in event order
func (r *PlayRepository) ListByGame(ctx context.Context, sport models.Sport, gameID int) ([]models.PlayRecord, error) {
	start := time.Now()
	query := `
		SELECT season, sport_id, game_id, game_time_str, period_seconds_remaining,
		       game_seconds_remaining, clock_milliseconds, period_num, event_team,
		       event_text, is_overtime, away_score, home_score, event_num,
		       game_datetime, stadium_name, attendance, away_team_id, away_team_name,
		       home_team_id, home_team_name
		FROM plays
		WHERE sport_id = $1 AND game_id = $2
		ORDER BY event_num
	`

	rows, err := r.db.Pool.Query(ctx, query, sport, gameID)
	observe("select", "plays", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list plays: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.PlayRecord])
	if err != nil {
		return nil, fmt.Errorf("failed to scan plays: %w", err)
	}
	return records, nil
}
