package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/antzucaro/matchr"
	"github.com/jackc/pgx/v5"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog/log"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
)

// minTeamSimilarity is the lowest name similarity a non-substring match needs
const minTeamSimilarity = 0.6

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

// Upsert inserts or updates a team, keeping the most recent season seen
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	start := time.Now()
	query := `
		INSERT INTO teams (team_id, sport_id, team_name, last_season)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sport_id, team_id) DO UPDATE SET
			team_name = EXCLUDED.team_name,
			last_season = GREATEST(teams.last_season, EXCLUDED.last_season),
			updated_at = NOW()
		RETURNING id, last_season, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		team.TeamID, team.SportID, team.TeamName, team.LastSeason,
	).Scan(&team.ID, &team.LastSeason, &team.CreatedAt, &team.UpdatedAt)
	observe("upsert", "teams", start, err)

	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	log.Debug().
		Int("team_id", team.TeamID).
		Str("sport", team.SportID.String()).
		Str("name", team.TeamName).
		Msg("Team saved")

	return nil
}

// UpsertFromGame saves both teams of a game
func (r *TeamRepository) UpsertFromGame(ctx context.Context, info *models.GameInfo) error {
	for _, team := range info.Teams() {
		if team.TeamID == 0 {
			continue
		}
		if err := r.Upsert(ctx, team); err != nil {
			return err
		}
	}
	return nil
}

// GetByTeamID retrieves a team by its stats site ID
func (r *TeamRepository) GetByTeamID(ctx context.Context, sport models.Sport, teamID int) (*models.Team, error) {
	start := time.Now()
	query := `
		SELECT id, team_id, sport_id, team_name, last_season, created_at, updated_at
		FROM teams
		WHERE sport_id = $1 AND team_id = $2
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, sport, teamID).Scan(
		&team.ID, &team.TeamID, &team.SportID, &team.TeamName, &team.LastSeason,
		&team.CreatedAt, &team.UpdatedAt,
	)
	observe("select", "teams", start, err)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team %s/%d: %w", sport, teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// ListBySport retrieves all teams of a sport
func (r *TeamRepository) ListBySport(ctx context.Context, sport models.Sport) ([]*models.Team, error) {
	start := time.Now()
	query := `
		SELECT id, team_id, sport_id, team_name, last_season, created_at, updated_at
		FROM teams
		WHERE sport_id = $1
		ORDER BY team_name
	`

	rows, err := r.db.Pool.Query(ctx, query, sport)
	observe("select", "teams", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		err := rows.Scan(
			&team.ID, &team.TeamID, &team.SportID, &team.TeamName, &team.LastSeason,
			&team.CreatedAt, &team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	return teams, rows.Err()
}

// Search finds teams of a sport whose names resemble query, best match first
func (r *TeamRepository) Search(ctx context.Context, sport models.Sport, query string, limit int) ([]*models.Team, error) {
	teams, err := r.ListBySport(ctx, sport)
	if err != nil {
		return nil, err
	}
	return RankTeams(query, teams, limit), nil
}

// RankTeams orders teams by how well their names match query. Names containing
// the query's letters in order rank first, then names within edit distance
// ordered by Jaro-Winkler similarity.
func RankTeams(query string, teams []*models.Team, limit int) []*models.Team {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	type scored struct {
		team  *models.Team
		score float64
	}

	var matches []scored
	for _, team := range teams {
		name := strings.ToLower(team.TeamName)

		if fuzzy.MatchNormalizedFold(q, name) {
			// closer lengths mean fewer skipped letters
			rank := fuzzy.RankMatchNormalizedFold(q, name)
			matches = append(matches, scored{team: team, score: 2 - float64(rank)/float64(len(name)+1)})
			continue
		}

		distance := fuzzy.LevenshteinDistance(q, name)
		maxLen := float64(max(len(q), len(name)))
		if 1-float64(distance)/maxLen >= minTeamSimilarity {
			matches = append(matches, scored{team: team, score: matchr.JaroWinkler(q, name, false)})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	result := make([]*models.Team, len(matches))
	for i, m := range matches {
		result[i] = m.team
	}
	return result
}
