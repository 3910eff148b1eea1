package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/cache"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/metrics"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/pbp"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/scraper"
)

// PageFetcher fetches raw play-by-play pages
type PageFetcher interface {
	PlayByPlayPage(ctx context.Context, gameID int) ([]byte, error)
}

// SharedCache is the cache shared between workers (Redis). SetPlays announces
// a refreshed table; WarmPlays only copies one up from a slower tier.
type SharedCache interface {
	GetPlays(ctx context.Context, sport models.Sport, gameID int) ([]models.PlayRecord, error)
	SetPlays(ctx context.Context, sport models.Sport, gameID int, records []models.PlayRecord) error
	WarmPlays(ctx context.Context, sport models.Sport, gameID int, records []models.PlayRecord) error
	Delete(ctx context.Context, sport models.Sport, gameID int) error
}

// GameStore records ingestion outcomes
type GameStore interface {
	MarkDone(ctx context.Context, sport models.Sport, gameID, season, playCount int) error
	MarkFailed(ctx context.Context, sport models.Sport, gameID int, cause error) error
}

// PlayStore persists normalized rows
type PlayStore interface {
	ReplaceForGame(ctx context.Context, sport models.Sport, gameID int, records []models.PlayRecord) error
	ListByGame(ctx context.Context, sport models.Sport, gameID int) ([]models.PlayRecord, error)
}

// ErrPersist marks failures to save a normalized table to the database
var ErrPersist = errors.New("failed to persist play-by-play")

// TeamStore persists the teams seen on game pages
type TeamStore interface {
	UpsertFromGame(ctx context.Context, info *models.GameInfo) error
}

// Deps wires a Service. Only Fetcher is required; nil caches and stores are skipped.
type Deps struct {
	Fetcher     PageFetcher
	Disk        *cache.DiskCache
	Shared      SharedCache
	Games       GameStore
	Plays       PlayStore
	Teams       TeamStore
	Concurrency int
}

// Service turns contest IDs into normalized play-by-play tables
type Service struct {
	fetcher     PageFetcher
	disk        *cache.DiskCache
	shared      SharedCache
	games       GameStore
	plays       PlayStore
	teams       TeamStore
	concurrency int
}

// NewService creates a new ingestion service
func NewService(deps Deps) *Service {
	concurrency := deps.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		fetcher:     deps.Fetcher,
		disk:        deps.Disk,
		shared:      deps.Shared,
		games:       deps.Games,
		plays:       deps.Plays,
		teams:       deps.Teams,
		concurrency: concurrency,
	}
}

// PlayByPlay returns a game's normalized play-by-play table. Cached copies are
// served unless force is set, in which case they are evicted first. Fresh
// tables are written to every configured store, and only after normalization
// succeeds.
func (s *Service) PlayByPlay(ctx context.Context, sport models.Sport, gameID int, force bool) ([]models.PlayRecord, error) {
	if force {
		s.evict(ctx, sport, gameID)
	} else if records, ok := s.cached(ctx, sport, gameID); ok {
		s.markCached(ctx, sport, gameID, records)
		return records, nil
	}

	records, info, err := s.build(ctx, sport, gameID)
	if err != nil {
		s.recordFailure(ctx, sport, gameID, err)
		return nil, err
	}

	if err := s.persist(ctx, sport, gameID, info, records); err != nil {
		s.recordFailure(ctx, sport, gameID, err)
		return nil, err
	}

	return records, nil
}

// cached looks a game up in Redis, then on disk, then in Postgres. A hit in a
// slower tier is copied into the faster ones.
func (s *Service) cached(ctx context.Context, sport models.Sport, gameID int) ([]models.PlayRecord, bool) {
	if s.shared != nil {
		records, err := s.shared.GetPlays(ctx, sport, gameID)
		if err == nil {
			return records, true
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Int("game_id", gameID).Msg("Shared cache read failed")
		}
	}

	if s.disk != nil {
		records, err := s.disk.Load(sport, gameID)
		if err == nil {
			s.warmShared(ctx, sport, gameID, records)
			return records, true
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Int("game_id", gameID).Msg("Disk cache read failed")
		}
	}

	if s.plays != nil {
		records, err := s.plays.ListByGame(ctx, sport, gameID)
		if err != nil {
			log.Warn().Err(err).Int("game_id", gameID).Msg("Stored plays read failed")
			return nil, false
		}
		if len(records) > 0 {
			if s.disk != nil {
				if err := s.disk.Store(sport, gameID, records); err != nil {
					log.Warn().Err(err).Int("game_id", gameID).Msg("Failed to warm disk cache")
				}
			}
			s.warmShared(ctx, sport, gameID, records)
			return records, true
		}
	}

	return nil, false
}

func (s *Service) warmShared(ctx context.Context, sport models.Sport, gameID int, records []models.PlayRecord) {
	if s.shared == nil {
		return
	}
	if err := s.shared.WarmPlays(ctx, sport, gameID, records); err != nil {
		log.Warn().Err(err).Int("game_id", gameID).Msg("Failed to warm shared cache")
	}
}

// markCached settles the queue entry of a game served from a cache, so a
// queued game whose table is already cached does not stay pending.
func (s *Service) markCached(ctx context.Context, sport models.Sport, gameID int, records []models.PlayRecord) {
	if s.games == nil || len(records) == 0 {
		return
	}
	if err := s.games.MarkDone(ctx, sport, gameID, records[0].Season, len(records)); err != nil {
		log.Warn().Err(err).Int("game_id", gameID).Msg("Failed to mark cached game done")
	}
}

// evict drops the cached copies of a game. Stored rows stay until replaced.
func (s *Service) evict(ctx context.Context, sport models.Sport, gameID int) {
	if s.disk != nil {
		if err := s.disk.Remove(sport, gameID); err != nil {
			log.Warn().Err(err).Int("game_id", gameID).Msg("Failed to evict disk cache")
		}
	}
	if s.shared != nil {
		if err := s.shared.Delete(ctx, sport, gameID); err != nil {
			log.Warn().Err(err).Int("game_id", gameID).Msg("Failed to evict shared cache")
		}
	}
}

// build fetches, parses and normalizes a game without touching any store
func (s *Service) build(ctx context.Context, sport models.Sport, gameID int) ([]models.PlayRecord, *models.GameInfo, error) {
	page, err := s.fetcher.PlayByPlayPage(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}

	info, raw, err := scraper.ParsePlayByPlay(bytes.NewReader(page))
	if err != nil {
		return nil, nil, fmt.Errorf("game %d: %w", gameID, err)
	}
	info.GameID = gameID
	info.SportID = sport

	spec, err := pbp.LookupPeriodSpec(sport, info.Season)
	if err != nil {
		return nil, nil, err
	}

	logger := log.With().
		Str("sport", sport.String()).
		Int("game_id", gameID).
		Logger()

	start := time.Now()
	result, err := pbp.NewNormalizer(spec, pbp.WithLogger(logger)).Normalize(raw)
	if err != nil {
		metrics.RecordNormalization(sport.String(), "failed", 0, time.Since(start).Seconds())
		return nil, nil, fmt.Errorf("game %d: %w", gameID, err)
	}
	metrics.RecordNormalization(sport.String(), "success", result.Skipped, time.Since(start).Seconds())

	logger.Debug().
		Int("plays", len(result.Plays)).
		Int("skipped", result.Skipped).
		Int("score_gaps", result.ScoreGaps).
		Str("orientation", result.Orientation.String()).
		Msg("Play-by-play normalized")

	return pbp.Emit(info, result.Plays), info, nil
}

func (s *Service) persist(ctx context.Context, sport models.Sport, gameID int, info *models.GameInfo, records []models.PlayRecord) error {
	if s.disk != nil {
		if err := s.disk.Store(sport, gameID, records); err != nil {
			log.Warn().Err(err).Int("game_id", gameID).Msg("Failed to write disk cache")
		}
	}

	if s.shared != nil {
		if err := s.shared.SetPlays(ctx, sport, gameID, records); err != nil {
			log.Warn().Err(err).Int("game_id", gameID).Msg("Failed to write shared cache")
		}
	}

	if s.teams != nil {
		if err := s.teams.UpsertFromGame(ctx, info); err != nil {
			log.Warn().Err(err).Int("game_id", gameID).Msg("Failed to save teams")
		}
	}

	if s.plays != nil {
		if err := s.plays.ReplaceForGame(ctx, sport, gameID, records); err != nil {
			return fmt.Errorf("game %d: %w: %w", gameID, ErrPersist, err)
		}
	}

	if s.games != nil {
		if err := s.games.MarkDone(ctx, sport, gameID, info.Season, len(records)); err != nil {
			return fmt.Errorf("game %d: %w: %w", gameID, ErrPersist, err)
		}
	}

	return nil
}

func (s *Service) recordFailure(ctx context.Context, sport models.Sport, gameID int, cause error) {
	metrics.RecordError("ingest", errorType(cause))
	if s.games == nil || ctx.Err() != nil {
		return
	}
	if err := s.games.MarkFailed(ctx, sport, gameID, cause); err != nil {
		log.Error().Err(err).Int("game_id", gameID).Msg("Failed to record game failure")
	}
}

func errorType(err error) string {
	var (
		unresolved *pbp.UnresolvedPeriodLabelError
		malformed  *pbp.MalformedClockError
	)
	switch {
	case errors.As(err, &unresolved):
		return "unresolved_period"
	case errors.As(err, &malformed):
		return "malformed_clock"
	case errors.Is(err, pbp.ErrNoPlays):
		return "no_plays"
	case errors.Is(err, pbp.ErrUnknownSport):
		return "unknown_sport"
	case errors.Is(err, scraper.ErrUnexpectedPage):
		return "parse"
	case errors.Is(err, ErrPersist):
		return "persist"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "fetch"
	}
}

// GameRef identifies one game to sync
type GameRef struct {
	Sport  models.Sport
	GameID int
}

// RefsFromGames converts queued games to refs
func RefsFromGames(games []*models.Game) []GameRef {
	refs := make([]GameRef, len(games))
	for i, g := range games {
		refs[i] = GameRef{Sport: g.SportID, GameID: g.GameID}
	}
	return refs
}

// SyncResult summarizes a batch
type SyncResult struct {
	RunID     string
	Succeeded int
	Failed    int
	Errors    map[GameRef]error
	Duration  time.Duration
}

// SyncGames ingests a batch of games with bounded concurrency. A failing game
// is recorded and does not stop the batch.
func (s *Service) SyncGames(ctx context.Context, syncType string, refs []GameRef, force bool) *SyncResult {
	start := time.Now()
	result := &SyncResult{
		RunID:  uuid.NewString(),
		Errors: make(map[GameRef]error),
	}

	logger := log.With().Str("run_id", result.RunID).Str("type", syncType).Logger()
	logger.Info().Int("games", len(refs)).Msg("Sync starting")

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.concurrency)
	)

	for _, ref := range refs {
		acquired := false
		if ctx.Err() == nil {
			select {
			case <-ctx.Done():
			case sem <- struct{}{}:
				acquired = true
			}
		}
		if !acquired {
			mu.Lock()
			result.Failed++
			result.Errors[ref] = ctx.Err()
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(ref GameRef) {
			defer wg.Done()
			defer func() { <-sem }()

			records, err := s.PlayByPlay(ctx, ref.Sport, ref.GameID, force)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors[ref] = err
				logger.Error().Err(err).Str("sport", ref.Sport.String()).Int("game_id", ref.GameID).Msg("Failed to sync game")
				return
			}
			result.Succeeded++
			logger.Debug().Str("sport", ref.Sport.String()).Int("game_id", ref.GameID).Int("plays", len(records)).Msg("Game synced")
		}(ref)
	}

	wg.Wait()
	result.Duration = time.Since(start)

	status := "success"
	if result.Failed > 0 {
		status = "partial"
	}
	if result.Succeeded == 0 && result.Failed > 0 {
		status = "failed"
	}
	metrics.RecordSync(syncType, status, result.Duration.Seconds())

	logger.Info().
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("Sync complete")

	return result
}
