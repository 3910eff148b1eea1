package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/config"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/ingest"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/metrics"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/scraper"
)

// Syncer ingests batches of games
type Syncer interface {
	SyncGames(ctx context.Context, syncType string, refs []ingest.GameRef, force bool) *ingest.SyncResult
}

// GameQueue is the persisted list of games to ingest
type GameQueue interface {
	ListPending(ctx context.Context, limit int) ([]*models.Game, error)
	ListStale(ctx context.Context, cutoff time.Time, minSeason, limit int) ([]*models.Game, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// Discoverer queues the games listed on a day's scoreboard
type Discoverer interface {
	DiscoverDay(ctx context.Context, sport models.Sport, division int, date time.Time) ([]scraper.ScheduledGame, error)
}

// Scheduler manages background ingestion:
// - Poll the queue for pending games on a fixed interval
// - Nightly refresh of current-season games whose tables have gone stale
// - Daily discovery of the games played on the previous days
type Scheduler struct {
	cfg        *config.Config
	syncer     Syncer
	queue      GameQueue
	discoverer Discoverer
	cron       *cron.Cron
	ticker     *time.Ticker
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	now        func() time.Time
}

// NewScheduler creates a new scheduler instance. Discovery is skipped when discoverer is nil.
func NewScheduler(cfg *config.Config, syncer Syncer, queue GameQueue, discoverer Discoverer) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		syncer:     syncer,
		queue:      queue,
		discoverer: discoverer,
		cron:       cron.New(),
		stopChan:   make(chan struct{}),
		now:        time.Now,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.NightlyRefreshCron, func() {
		log.Info().Msg("Running nightly refresh...")
		if err := s.refreshStaleGames(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly refresh: %w", err)
	}

	log.Info().
		Str("schedule", s.cfg.NightlyRefreshCron).
		Msg("Nightly refresh scheduled")

	if s.discoverer != nil && s.cfg.DiscoveryCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.DiscoveryCron, func() {
			log.Info().Msg("Running game discovery...")
			s.discoverGames(ctx)
		}); err != nil {
			return fmt.Errorf("failed to schedule game discovery: %w", err)
		}
		log.Info().
			Str("schedule", s.cfg.DiscoveryCron).
			Msg("Game discovery scheduled")
	}

	s.cron.Start()

	s.ticker = time.NewTicker(s.cfg.PendingPollInterval)
	log.Info().
		Dur("interval", s.cfg.PendingPollInterval).
		Msg("Pending game polling started")

	s.wg.Add(1)
	go s.pollPendingGames(ctx)

	return nil
}

// Stop stops the scheduler and waits for the running batch to finish
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		log.Info().Msg("Stopping scheduler...")

		if s.cron != nil {
			<-s.cron.Stop().Done()
		}

		if s.ticker != nil {
			s.ticker.Stop()
		}

		close(s.stopChan)
		s.wg.Wait()
		log.Info().Msg("Scheduler stopped")
	})
}

func (s *Scheduler) pollPendingGames(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping pending game polling")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping pending game polling")
			return
		case <-s.ticker.C:
			if err := s.syncPendingGames(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to sync pending games")
			}
		}
	}
}

// syncPendingGames ingests one batch of queued games
func (s *Scheduler) syncPendingGames(ctx context.Context) error {
	metrics.RecordSchedulerRun("pending")

	games, err := s.queue.ListPending(ctx, s.cfg.PendingBatchSize)
	if err != nil {
		return fmt.Errorf("failed to list pending games: %w", err)
	}

	if len(games) == 0 {
		log.Debug().Msg("No pending games found")
		return nil
	}

	log.Info().Int("count", len(games)).Msg("Found pending games")
	s.syncer.SyncGames(ctx, "pending", ingest.RefsFromGames(games), false)

	if remaining, err := s.queue.CountByStatus(ctx, models.GameStatusPending); err == nil {
		metrics.UpdatePendingGames(remaining)
	} else {
		log.Warn().Err(err).Msg("Failed to count pending games")
	}

	return nil
}

// refreshStaleGames re-ingests games from the current and previous season
// whose tables are older than StaleAfter. Older seasons never change.
func (s *Scheduler) refreshStaleGames(ctx context.Context) error {
	metrics.RecordSchedulerRun("nightly")

	now := s.now()
	cutoff := now.Add(-s.cfg.StaleAfter)
	minSeason := now.Year() - 1

	games, err := s.queue.ListStale(ctx, cutoff, minSeason, s.cfg.PendingBatchSize*10)
	if err != nil {
		return fmt.Errorf("failed to list stale games: %w", err)
	}

	log.Info().
		Int("count", len(games)).
		Int("min_season", minSeason).
		Time("cutoff", cutoff).
		Msg("Stale games found")

	if len(games) == 0 {
		return nil
	}

	result := s.syncer.SyncGames(ctx, "nightly", ingest.RefsFromGames(games), true)
	log.Info().
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("Nightly refresh complete")
	return nil
}

// discoverGames queues the games of the last DiscoveryLookbackDays days, today
// excluded, for every configured sport and division. A failing scoreboard is
// logged and the rest are still scanned.
func (s *Scheduler) discoverGames(ctx context.Context) int {
	metrics.RecordSchedulerRun("discovery")

	days := s.cfg.DiscoveryLookbackDays
	if days < 1 {
		days = 1
	}

	today := s.now()
	found := 0
	for d := days; d >= 1; d-- {
		date := today.AddDate(0, 0, -d)
		for _, sport := range s.cfg.DiscoverySportCodes() {
			for _, division := range s.cfg.DiscoveryDivisions {
				if ctx.Err() != nil {
					return found
				}
				games, err := s.discoverer.DiscoverDay(ctx, sport, division, date)
				if err != nil {
					log.Error().
						Err(err).
						Str("sport", sport.String()).
						Int("division", division).
						Str("date", date.Format("2006-01-02")).
						Msg("Game discovery failed")
				}
				found += len(games)
			}
		}
	}

	log.Info().Int("games", found).Int("days", days).Msg("Game discovery complete")
	return found
}
