package ingest

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/metrics"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/scraper"
)

// ScheduleFetcher fetches day scoreboards
type ScheduleFetcher interface {
	DaySchedulePage(ctx context.Context, sportCode string, division int, date time.Time) ([]byte, error)
}

// GameEnqueuer adds games to the ingestion queue
type GameEnqueuer interface {
	Enqueue(ctx context.Context, sport models.Sport, gameID int) (*models.Game, error)
}

// Discoverer finds the contests played on a day and queues them for ingestion
type Discoverer struct {
	fetcher ScheduleFetcher
	queue   GameEnqueuer
}

// NewDiscoverer creates a discoverer. With a nil queue, games are listed but not queued.
func NewDiscoverer(fetcher ScheduleFetcher, queue GameEnqueuer) *Discoverer {
	return &Discoverer{fetcher: fetcher, queue: queue}
}

// DiscoverDay lists one division's games of a sport on date and queues each of them.
// Games already known to the queue keep their status.
func (d *Discoverer) DiscoverDay(ctx context.Context, sport models.Sport, division int, date time.Time) ([]scraper.ScheduledGame, error) {
	page, err := d.fetcher.DaySchedulePage(ctx, sport.String(), division, date)
	if err != nil {
		metrics.RecordError("discovery", errorType(err))
		return nil, err
	}

	games, err := scraper.ParseDaySchedule(bytes.NewReader(page))
	if err != nil {
		metrics.RecordError("discovery", errorType(err))
		return nil, fmt.Errorf("%s schedule for %s: %w", sport, date.Format("2006-01-02"), err)
	}
	metrics.RecordGamesDiscovered(sport.String(), len(games))

	if d.queue == nil {
		return games, nil
	}

	for _, g := range games {
		if _, err := d.queue.Enqueue(ctx, sport, g.GameID); err != nil {
			return games, fmt.Errorf("failed to queue game %d: %w", g.GameID, err)
		}
	}

	log.Info().
		Str("sport", sport.String()).
		Int("division", division).
		Str("date", date.Format("2006-01-02")).
		Int("games", len(games)).
		Msg("Day schedule discovered")

	return games, nil
}
