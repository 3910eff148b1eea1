package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("not found")

// GameRepository tracks which games have been ingested
type GameRepository struct {
	db *Database
}

const gameColumns = `id, game_id, sport_id, season, status, play_count, last_error, fetched_at, created_at, updated_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	var game models.Game
	err := row.Scan(
		&game.ID, &game.GameID, &game.SportID, &game.Season, &game.Status,
		&game.PlayCount, &game.LastError, &game.FetchedAt, &game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func collectGames(rows pgx.Rows) ([]*models.Game, error) {
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

// Enqueue adds a game to the ingestion queue. Already known games are left untouched.
func (r *GameRepository) Enqueue(ctx context.Context, sport models.Sport, gameID int) (*models.Game, error) {
	start := time.Now()
	query := `
		WITH inserted AS (
			INSERT INTO games (game_id, sport_id, status)
			VALUES ($1, $2, 'pending')
			ON CONFLICT (sport_id, game_id) DO NOTHING
			RETURNING ` + gameColumns + `
		)
		SELECT ` + gameColumns + ` FROM inserted
		UNION ALL
		SELECT ` + gameColumns + ` FROM games WHERE sport_id = $2 AND game_id = $1
		LIMIT 1
	`

	game, err := scanGame(r.db.Pool.QueryRow(ctx, query, gameID, sport))
	observe("enqueue", "games", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue game: %w", err)
	}

	log.Debug().
		Int("game_id", gameID).
		Str("sport", sport.String()).
		Str("status", game.Status).
		Msg("Game queued")

	return game, nil
}

// GetByGameID retrieves a game by its stats site contest ID
func (r *GameRepository) GetByGameID(ctx context.Context, sport models.Sport, gameID int) (*models.Game, error) {
	start := time.Now()
	query := `SELECT ` + gameColumns + ` FROM games WHERE sport_id = $1 AND game_id = $2`

	game, err := scanGame(r.db.Pool.QueryRow(ctx, query, sport, gameID))
	observe("select", "games", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("game %s/%d: %w", sport, gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// ListPending returns the oldest queued games that have not been fetched yet
func (r *GameRepository) ListPending(ctx context.Context, limit int) ([]*models.Game, error) {
	start := time.Now()
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	observe("select", "games", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending games: %w", err)
	}
	return collectGames(rows)
}

// ListStale returns games last fetched before the cutoff, including failed ones.
// Games from seasons before minSeason are finished and never listed.
func (r *GameRepository) ListStale(ctx context.Context, cutoff time.Time, minSeason, limit int) ([]*models.Game, error) {
	start := time.Now()
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE status IN ('done', 'failed')
		  AND updated_at < $1
		  AND (season IS NULL OR season >= $2)
		ORDER BY updated_at
		LIMIT $3
	`

	rows, err := r.db.Pool.Query(ctx, query, cutoff, minSeason, limit)
	observe("select", "games", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale games: %w", err)
	}
	return collectGames(rows)
}

// ListBySeasons returns games played in the inclusive season range
func (r *GameRepository) ListBySeasons(ctx context.Context, from, to int) ([]*models.Game, error) {
	start := time.Now()
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE season BETWEEN $1 AND $2
		ORDER BY season, sport_id, game_id
	`

	rows, err := r.db.Pool.Query(ctx, query, from, to)
	observe("select", "games", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list games by season: %w", err)
	}
	return collectGames(rows)
}

// MarkDone records a successful ingestion
func (r *GameRepository) MarkDone(ctx context.Context, sport models.Sport, gameID, season, playCount int) error {
	start := time.Now()
	query := `
		INSERT INTO games (game_id, sport_id, season, status, play_count, last_error, fetched_at)
		VALUES ($1, $2, $3, 'done', $4, NULL, NOW())
		ON CONFLICT (sport_id, game_id) DO UPDATE SET
			season = EXCLUDED.season,
			status = 'done',
			play_count = EXCLUDED.play_count,
			last_error = NULL,
			fetched_at = NOW(),
			updated_at = NOW()
	`

	_, err := r.db.Pool.Exec(ctx, query, gameID, sport, season, playCount)
	observe("upsert", "games", start, err)
	if err != nil {
		return fmt.Errorf("failed to mark game done: %w", err)
	}
	return nil
}

// MarkFailed records a failed ingestion and its error
func (r *GameRepository) MarkFailed(ctx context.Context, sport models.Sport, gameID int, cause error) error {
	start := time.Now()
	query := `
		INSERT INTO games (game_id, sport_id, status, last_error)
		VALUES ($1, $2, 'failed', $3)
		ON CONFLICT (sport_id, game_id) DO UPDATE SET
			status = 'failed',
			last_error = EXCLUDED.last_error,
			updated_at = NOW()
	`

	_, err := r.db.Pool.Exec(ctx, query, gameID, sport, cause.Error())
	observe("upsert", "games", start, err)
	if err != nil {
		return fmt.Errorf("failed to mark game failed: %w", err)
	}
	return nil
}

// CountByStatus returns the number of games with a status
func (r *GameRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	start := time.Now()
	var count int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM games WHERE status = $1`, status).Scan(&count)
	observe("count", "games", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return count, nil
}
