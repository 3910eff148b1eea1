package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
)

// PlayService serves normalized play-by-play tables
type PlayService interface {
	PlayByPlay(ctx context.Context, sport models.Sport, gameID int, force bool) ([]models.PlayRecord, error)
}

// GameQueue accepts games for background ingestion and reports their status
type GameQueue interface {
	Enqueue(ctx context.Context, sport models.Sport, gameID int) (*models.Game, error)
	GetByGameID(ctx context.Context, sport models.Sport, gameID int) (*models.Game, error)
}

// TeamSearcher finds teams by name or ID
type TeamSearcher interface {
	Search(ctx context.Context, sport models.Sport, query string, limit int) ([]*models.Team, error)
	GetByTeamID(ctx context.Context, sport models.Sport, teamID int) (*models.Team, error)
}

// HealthChecker is a dependency reported by /health
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps wires the HTTP handlers. Queue, Teams and Checks may be nil.
type Deps struct {
	Plays  PlayService
	Queue  GameQueue
	Teams  TeamSearcher
	Checks map[string]HealthChecker
}

// NewRouter builds the HTTP API
func NewRouter(deps Deps, allowedOrigins []string) http.Handler {
	h := &Handler{
		plays:  deps.Plays,
		queue:  deps.Queue,
		teams:  deps.Teams,
		checks: deps.Checks,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(2 * time.Minute))

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sports", h.GetSports)
		r.Get("/pbp/{sport}/{gameID}", h.GetPlayByPlay)
		r.Post("/games", h.QueueGames)
		r.Get("/games/{sport}/{gameID}", h.GetGame)
		r.Get("/teams", h.SearchTeams)
		r.Get("/teams/{sport}/{teamID}", h.GetTeam)
	})

	return r
}

// requestLogger logs each request through zerolog
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
