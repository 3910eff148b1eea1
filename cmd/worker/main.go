package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/api"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/app"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/config"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/ingest"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/metrics"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/scheduler"
)

func main() {
	setupLogger()

	log.Info().Msg("Starting NCAA play-by-play worker")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort)
	}

	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
				if a.DB != nil {
					a.DB.PoolStats()
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      api.NewRouter(a.APIDeps(), nil),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("API server failed")
			cancel()
		}
	}()

	var sched *scheduler.Scheduler
	if cfg.EnableScheduler {
		if a.DB == nil {
			log.Warn().Msg("Scheduler requires the database - not starting")
		} else {
			sched = scheduler.NewScheduler(cfg, a.Ingest, a.DB.Games, a.Discovery)
			log.Info().Msg("Starting scheduler...")
			if err := sched.Start(ctx); err != nil {
				log.Fatal().Err(err).Msg("Failed to start scheduler")
			}
		}
	}

	if cfg.BackfillSeasons != "" && a.DB != nil {
		go runBackfill(ctx, a, cfg.BackfillSeasons)
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("API server shutdown failed")
	}

	if sched != nil {
		log.Info().Msg("Shutting down scheduler...")
		sched.Stop()
	}

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// runBackfill re-ingests every queued game of the configured seasons once at startup
func runBackfill(ctx context.Context, a *app.App, seasons string) {
	from, to, err := config.ParseSeasonRange(seasons)
	if err != nil {
		log.Error().Err(err).Msg("Invalid backfill seasons")
		return
	}

	games, err := a.DB.Games.ListBySeasons(ctx, from, to)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list backfill games")
		return
	}

	log.Info().
		Int("from", from).
		Int("to", to).
		Int("games", len(games)).
		Msg("Running backfill...")

	result := a.Ingest.SyncGames(ctx, "backfill", ingest.RefsFromGames(games), true)
	log.Info().
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("Backfill complete")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
