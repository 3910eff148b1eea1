// Package app wires configuration into the clients, stores and services
// shared by the worker and the command-line tool.
package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/api"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/cache"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/client"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/config"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/ingest"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/repository"
)

// App holds the wired dependencies. DB and Redis are nil when disabled or unreachable.
type App struct {
	Config    *config.Config
	Client    *client.Client
	Disk      *cache.DiskCache
	Redis     *cache.RedisCache
	DB        *repository.Database
	Ingest    *ingest.Service
	Discovery *ingest.Discoverer
}

// New connects every configured backend. A database that is enabled but
// unreachable is an error; Redis is optional and only logged.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	a.Client = client.NewClient(client.Options{
		BaseURL:        cfg.StatsBaseURL,
		Timeout:        cfg.StatsTimeout,
		RequestDelay:   cfg.StatsRequestDelay,
		MaxRetries:     cfg.StatsMaxRetries,
		MaxConcurrency: cfg.StatsMaxConcurrency,
	})
	log.Info().Str("base_url", cfg.StatsBaseURL).Msg("Stats client initialized")

	root, err := cfg.CacheRoot()
	if err != nil {
		return nil, err
	}
	a.Disk = cache.NewDiskCache(root, cfg.CacheMaxAgePBP)
	log.Info().Str("root", root).Msg("Disk cache ready")

	if cfg.DatabaseEnabled {
		db, err := repository.NewDatabase(ctx, repository.Config{
			Host:     cfg.DatabaseHost,
			Port:     strconv.Itoa(cfg.DatabasePort),
			User:     cfg.DatabaseUser,
			Password: cfg.DatabasePassword,
			Database: cfg.DatabaseName,
			SSLMode:  cfg.DatabaseSSLMode,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		a.DB = db
		log.Info().Msg("Database connection established")
	}

	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTLPBP,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without shared cache")
		} else {
			a.Redis = redisCache
			log.Info().Msg("Redis cache connected")
		}
	}

	deps := ingest.Deps{
		Fetcher:     a.Client,
		Disk:        a.Disk,
		Concurrency: cfg.StatsMaxConcurrency,
	}
	// Typed nil pointers must not reach the interfaces.
	if a.Redis != nil {
		deps.Shared = a.Redis
	}
	var queue ingest.GameEnqueuer
	if a.DB != nil {
		deps.Games = a.DB.Games
		deps.Plays = a.DB.Plays
		deps.Teams = a.DB.Teams
		queue = a.DB.Games
	}
	a.Ingest = ingest.NewService(deps)
	a.Discovery = ingest.NewDiscoverer(a.Client, queue)

	return a, nil
}

// APIDeps returns the HTTP handler dependencies backed by this App
func (a *App) APIDeps() api.Deps {
	deps := api.Deps{
		Plays:  a.Ingest,
		Checks: map[string]api.HealthChecker{},
	}
	if a.DB != nil {
		deps.Queue = a.DB.Games
		deps.Teams = a.DB.Teams
		deps.Checks["database"] = a.DB
	}
	if a.Redis != nil {
		deps.Checks["redis"] = a.Redis
	}
	return deps
}

// Close releases every open connection
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
