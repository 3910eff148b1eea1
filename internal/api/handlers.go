package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/cache"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/client"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/pbp"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/repository"
)

const maxQueueBatch = 500

// Handler contains dependencies for HTTP handlers
type Handler struct {
	plays  PlayService
	queue  GameQueue
	teams  TeamSearcher
	checks map[string]HealthChecker
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthCheck reports the status of each backing store
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checks))
	for name, checker := range h.checks {
		if err := checker.Health(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}

	respondJSON(w, status, map[string]interface{}{
		"status":    state,
		"checks":    checks,
		"timestamp": time.Now().UTC(),
	})
}

// GetSports lists the supported sport codes
// GET /api/v1/sports
func (h *Handler) GetSports(w http.ResponseWriter, r *http.Request) {
	sports := models.AllSports()
	out := make([]map[string]string, 0, len(sports))
	for _, s := range sports {
		out = append(out, map[string]string{"code": s.String(), "family": s.Family()})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"sports": out})
}

// parsePathIDs reads the {sport} path parameter and a positive numeric ID parameter
func parsePathIDs(w http.ResponseWriter, r *http.Request, idParam string) (models.Sport, int, bool) {
	sport, err := models.ParseSport(chi.URLParam(r, "sport"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return "", 0, false
	}

	id, err := strconv.Atoi(chi.URLParam(r, idParam))
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid "+strings.TrimSuffix(idParam, "ID")+" id", nil)
		return "", 0, false
	}
	return sport, id, true
}

// GetPlayByPlay returns a game's normalized play-by-play table
// GET /api/v1/pbp/{sport}/{gameID}?force=true&format=csv
func (h *Handler) GetPlayByPlay(w http.ResponseWriter, r *http.Request) {
	sport, gameID, ok := parsePathIDs(w, r, "gameID")
	if !ok {
		return
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	records, err := h.plays.PlayByPlay(r.Context(), sport, gameID, force)
	if err != nil {
		respondError(w, statusFor(err), "failed to load play-by-play", err)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		if err := cache.WritePlaysCSV(w, records); err != nil {
			log.Error().Err(err).Int("game_id", gameID).Msg("Failed to write CSV response")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sport":   sport,
		"game_id": gameID,
		"plays":   records,
		"count":   len(records),
	})
}

type queueRequest struct {
	Sport   string `json:"sport"`
	GameIDs []int  `json:"game_ids"`
}

// QueueGames adds games to the ingestion queue
// POST /api/v1/games {"sport": "MIH", "game_ids": [1, 2]}
func (h *Handler) QueueGames(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		respondError(w, http.StatusServiceUnavailable, "game queue is not configured", nil)
		return
	}

	var req queueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	sport, err := models.ParseSport(req.Sport)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if len(req.GameIDs) == 0 || len(req.GameIDs) > maxQueueBatch {
		respondError(w, http.StatusBadRequest, "game_ids must hold between 1 and 500 ids", nil)
		return
	}

	games := make([]*models.Game, 0, len(req.GameIDs))
	for _, id := range req.GameIDs {
		if id <= 0 {
			respondError(w, http.StatusBadRequest, "invalid game id "+strconv.Itoa(id), nil)
			return
		}
		game, err := h.queue.Enqueue(r.Context(), sport, id)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to queue game", err)
			return
		}
		games = append(games, game)
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"games": games,
		"count": len(games),
	})
}

// GetGame returns a game's ingestion status
// GET /api/v1/games/{sport}/{gameID}
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		respondError(w, http.StatusServiceUnavailable, "game queue is not configured", nil)
		return
	}

	sport, gameID, ok := parsePathIDs(w, r, "gameID")
	if !ok {
		return
	}

	game, err := h.queue.GetByGameID(r.Context(), sport, gameID)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "game is not queued", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get game", err)
		return
	}

	respondJSON(w, http.StatusOK, game)
}

// GetTeam returns one team
// GET /api/v1/teams/{sport}/{teamID}
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	if h.teams == nil {
		respondError(w, http.StatusServiceUnavailable, "team search is not configured", nil)
		return
	}

	sport, teamID, ok := parsePathIDs(w, r, "teamID")
	if !ok {
		return
	}

	team, err := h.teams.GetByTeamID(r.Context(), sport, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "team not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get team", err)
		return
	}

	respondJSON(w, http.StatusOK, team)
}

// SearchTeams fuzzy-matches team names
// GET /api/v1/teams?sport=MIH&q=minn&limit=10
func (h *Handler) SearchTeams(w http.ResponseWriter, r *http.Request) {
	if h.teams == nil {
		respondError(w, http.StatusServiceUnavailable, "team search is not configured", nil)
		return
	}

	sport, err := models.ParseSport(r.URL.Query().Get("sport"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "q is required", nil)
		return
	}

	limit := parseIntParam(r, "limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	teams, err := h.teams.Search(r.Context(), sport, query, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to search teams", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"teams": teams,
		"count": len(teams),
	})
}

// statusFor maps ingestion errors to HTTP status codes
func statusFor(err error) int {
	var unresolved *pbp.UnresolvedPeriodLabelError
	var malformed *pbp.MalformedClockError
	switch {
	case client.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, pbp.ErrUnknownSport):
		return http.StatusBadRequest
	case errors.As(err, &unresolved), errors.As(err, &malformed), errors.Is(err, pbp.ErrNoPlays):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func parseIntParam(r *http.Request, param string, defaultValue int) int {
	valueStr := r.URL.Query().Get(param)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		log.Warn().Err(err).Int("status", status).Msg(message)
		message = message + ": " + err.Error()
	}

	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
