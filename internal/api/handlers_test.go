package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/client"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/pbp"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/repository"
)

type mockPlays struct {
	records []models.PlayRecord
	err     error
	force   bool
}

func (m *mockPlays) PlayByPlay(ctx context.Context, sport models.Sport, gameID int, force bool) ([]models.PlayRecord, error) {
	m.force = force
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

type mockQueue struct {
	queued []int
}

func (m *mockQueue) Enqueue(ctx context.Context, sport models.Sport, gameID int) (*models.Game, error) {
	m.queued = append(m.queued, gameID)
	return &models.Game{GameID: gameID, SportID: sport, Status: models.GameStatusPending}, nil
}

func (m *mockQueue) GetByGameID(ctx context.Context, sport models.Sport, gameID int) (*models.Game, error) {
	for _, id := range m.queued {
		if id == gameID {
			return &models.Game{GameID: gameID, SportID: sport, Status: models.GameStatusPending}, nil
		}
	}
	return nil, fmt.Errorf("game %s/%d: %w", sport, gameID, repository.ErrNotFound)
}

type mockTeams struct {
	query string
	limit int
}

func (m *mockTeams) Search(ctx context.Context, sport models.Sport, query string, limit int) ([]*models.Team, error) {
	m.query = query
	m.limit = limit
	return []*models.Team{{TeamID: 557157, SportID: sport, TeamName: "Minnesota"}}, nil
}

func (m *mockTeams) GetByTeamID(ctx context.Context, sport models.Sport, teamID int) (*models.Team, error) {
	if teamID != 557157 {
		return nil, fmt.Errorf("team %s/%d: %w", sport, teamID, repository.ErrNotFound)
	}
	return &models.Team{TeamID: teamID, SportID: sport, TeamName: "Minnesota"}, nil
}

type mockCheck struct{ err error }

func (m mockCheck) Health(ctx context.Context) error { return m.err }

func sampleRecords() []models.PlayRecord {
	return []models.PlayRecord{
		{GameID: 42, SportID: models.MensIceHockey, Season: 2024, PeriodNum: 1, EventNum: 1, EventText: "Game Start", GameSecondsRemaining: 3600},
		{GameID: 42, SportID: models.MensIceHockey, Season: 2024, PeriodNum: 1, EventNum: 2, EventText: pbp.EndOfPeriodText},
	}
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetPlayByPlay(t *testing.T) {
	plays := &mockPlays{records: sampleRecords()}
	router := NewRouter(Deps{Plays: plays}, nil)

	w := do(t, router, http.MethodGet, "/api/v1/pbp/mih/42?force=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, plays.force)

	var body struct {
		Sport string              `json:"sport"`
		Count int                 `json:"count"`
		Plays []models.PlayRecord `json:"plays"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "MIH", body.Sport)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, 3600, body.Plays[0].GameSecondsRemaining)
}

func TestGetPlayByPlay_CSV(t *testing.T) {
	router := NewRouter(Deps{Plays: &mockPlays{records: sampleRecords()}}, nil)

	w := do(t, router, http.MethodGet, "/api/v1/pbp/MIH/42?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "game_id")
}

func TestGetPlayByPlay_BadInput(t *testing.T) {
	router := NewRouter(Deps{Plays: &mockPlays{}}, nil)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/v1/pbp/XYZ/42", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/v1/pbp/MIH/abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/v1/pbp/MIH/-1", nil).Code)
}

func TestGetPlayByPlay_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &client.StatusError{StatusCode: http.StatusNotFound, URL: "/contests/1"}, http.StatusNotFound},
		{"unresolved label", fmt.Errorf("game 1: %w", &pbp.UnresolvedPeriodLabelError{Label: "Shootout"}), http.StatusUnprocessableEntity},
		{"no plays", pbp.ErrNoPlays, http.StatusUnprocessableEntity},
		{"unknown sport", pbp.ErrUnknownSport, http.StatusBadRequest},
		{"upstream", errors.New("connection refused"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(Deps{Plays: &mockPlays{err: tt.err}}, nil)
			w := do(t, router, http.MethodGet, "/api/v1/pbp/MIH/1", nil)
			assert.Equal(t, tt.want, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.want, resp.Code)
		})
	}
}

func TestQueueGames(t *testing.T) {
	queue := &mockQueue{}
	router := NewRouter(Deps{Plays: &mockPlays{}, Queue: queue}, nil)

	w := do(t, router, http.MethodPost, "/api/v1/games", []byte(`{"sport":"MLA","game_ids":[10,11]}`))
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []int{10, 11}, queue.queued)

	w = do(t, router, http.MethodPost, "/api/v1/games", []byte(`{"sport":"MLA","game_ids":[]}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/games", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueueGames_NotConfigured(t *testing.T) {
	router := NewRouter(Deps{Plays: &mockPlays{}}, nil)
	w := do(t, router, http.MethodPost, "/api/v1/games", []byte(`{"sport":"MLA","game_ids":[1]}`))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetGame(t *testing.T) {
	queue := &mockQueue{queued: []int{77}}
	router := NewRouter(Deps{Plays: &mockPlays{}, Queue: queue}, nil)

	w := do(t, router, http.MethodGet, "/api/v1/games/MLA/77", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var game models.Game
	require.NoError(t, json.NewDecoder(w.Body).Decode(&game))
	assert.Equal(t, 77, game.GameID)
	assert.Equal(t, models.GameStatusPending, game.Status)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/games/MLA/78", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/v1/games/MLA/abc", nil).Code)
}

func TestGetTeam(t *testing.T) {
	router := NewRouter(Deps{Plays: &mockPlays{}, Teams: &mockTeams{}}, nil)

	w := do(t, router, http.MethodGet, "/api/v1/teams/mih/557157", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Minnesota")

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/teams/MIH/1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/v1/teams/XYZ/557157", nil).Code)

	unconfigured := NewRouter(Deps{Plays: &mockPlays{}}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, unconfigured, http.MethodGet, "/api/v1/teams/MIH/557157", nil).Code)
}

func TestSearchTeams(t *testing.T) {
	teams := &mockTeams{}
	router := NewRouter(Deps{Plays: &mockPlays{}, Teams: teams}, nil)

	w := do(t, router, http.MethodGet, "/api/v1/teams?sport=MIH&q=minn&limit=500", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "minn", teams.query)
	assert.Equal(t, 10, teams.limit)

	w = do(t, router, http.MethodGet, "/api/v1/teams?sport=MIH", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSports(t *testing.T) {
	router := NewRouter(Deps{Plays: &mockPlays{}}, nil)
	w := do(t, router, http.MethodGet, "/api/v1/sports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"hockey"`)
}

func TestHealthCheck(t *testing.T) {
	healthy := NewRouter(Deps{Plays: &mockPlays{}, Checks: map[string]HealthChecker{"database": mockCheck{}}}, nil)
	w := do(t, healthy, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)

	unhealthy := NewRouter(Deps{Plays: &mockPlays{}, Checks: map[string]HealthChecker{"redis": mockCheck{err: errors.New("down")}}}, nil)
	w = do(t, unhealthy, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := NewRouter(Deps{Plays: &mockPlays{}}, nil)
	w := do(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
