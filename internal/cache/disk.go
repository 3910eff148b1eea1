package cache

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/metrics"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
)

// ErrCacheMiss is returned when a game is not cached or its entry is stale
var ErrCacheMiss = errors.New("cache miss")

// DiskCache stores one CSV file per game under <root>/<sport folder>/raw_pbp/
type DiskCache struct {
	root   string
	maxAge time.Duration
	now    func() time.Time
}

// NewDiskCache creates a disk cache rooted at root. Entries older than maxAge
// are stale unless the game's season is finished.
func NewDiskCache(root string, maxAge time.Duration) *DiskCache {
	return &DiskCache{
		root:   root,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Path returns the cache file for a game
func (c *DiskCache) Path(sport models.Sport, gameID int) string {
	return filepath.Join(c.root, sport.CacheFolder(), "raw_pbp", strconv.Itoa(gameID)+"_raw_pbp.csv")
}

// Load returns the cached rows for a game, or ErrCacheMiss
func (c *DiskCache) Load(sport models.Sport, gameID int) ([]models.PlayRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordCacheOperation("disk", "load", time.Since(start).Seconds())
	}()

	path := c.Path(sport, gameID)
	stat, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		metrics.RecordCacheMiss("disk")
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat cache file: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	records, err := readPlays(f)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Discarding unreadable cache file")
		metrics.RecordCacheMiss("disk")
		return nil, ErrCacheMiss
	}

	if !c.fresh(stat.ModTime(), records) {
		metrics.RecordCacheMiss("disk")
		return nil, ErrCacheMiss
	}

	metrics.RecordCacheHit("disk")
	return records, nil
}

// fresh reports whether an entry may still be served. Games from seasons
// before the previous one never change and are always fresh.
func (c *DiskCache) fresh(modTime time.Time, records []models.PlayRecord) bool {
	now := c.now()
	if len(records) > 0 && records[0].Season > 0 && records[0].Season < now.Year()-1 {
		return true
	}
	return now.Sub(modTime) < c.maxAge
}

// Store writes a game's rows, replacing any previous file
func (c *DiskCache) Store(sport models.Sport, gameID int, records []models.PlayRecord) error {
	start := time.Now()
	defer func() {
		metrics.RecordCacheOperation("disk", "store", time.Since(start).Seconds())
	}()

	path := c.Path(sport, gameID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pbp-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writePlays(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move cache file into place: %w", err)
	}
	return nil
}

// Remove deletes a game's cache file if present
func (c *DiskCache) Remove(sport models.Sport, gameID int) error {
	err := os.Remove(c.Path(sport, gameID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

// WritePlaysCSV writes rows as CSV with a header line
func WritePlaysCSV(w io.Writer, records []models.PlayRecord) error {
	return writePlays(w, records)
}

func writePlays(w io.Writer, records []models.PlayRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.PlayColumns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range records {
		if err := cw.Write(records[i].Strings()); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func readPlays(r io.Reader) ([]models.PlayRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(models.PlayColumns)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty cache file")
	}

	records := make([]models.PlayRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := models.PlayRecordFromStrings(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, *rec)
	}
	return records, nil
}
