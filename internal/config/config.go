package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
)

// Config holds all application configuration
type Config struct {
	// Stats site
	StatsBaseURL        string        `envconfig:"STATS_BASE_URL" default:"https://stats.ncaa.org"`
	StatsTimeout        time.Duration `envconfig:"STATS_TIMEOUT" default:"30s"`
	StatsRequestDelay   time.Duration `envconfig:"STATS_REQUEST_DELAY" default:"5s"`
	StatsMaxRetries     int           `envconfig:"STATS_MAX_RETRIES" default:"3"`
	StatsMaxConcurrency int           `envconfig:"STATS_MAX_CONCURRENCY" default:"4"`

	// Disk cache
	CacheDir       string        `envconfig:"CACHE_DIR" default:"~/.ncaa_stats_py"`
	CacheMaxAgePBP time.Duration `envconfig:"CACHE_MAX_AGE_PBP" default:"840h"` // 35 days

	// Database
	DatabaseEnabled  bool   `envconfig:"DATABASE_ENABLED" default:"true"`
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"ncaa_stats"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"ncaa_stats"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" default:""`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisEnabled  bool          `envconfig:"REDIS_ENABLED" default:"true"`
	RedisHost     string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int           `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTLPBP   time.Duration `envconfig:"CACHE_TTL_PBP" default:"24h"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort int    `envconfig:"HTTP_PORT" default:"8080"`

	// Scheduler
	EnableScheduler     bool          `envconfig:"ENABLE_SCHEDULER" default:"true"`
	NightlyRefreshCron  string        `envconfig:"NIGHTLY_REFRESH_CRON" default:"0 4 * * *"`
	PendingPollInterval time.Duration `envconfig:"PENDING_POLL_INTERVAL" default:"60s"`
	PendingBatchSize    int           `envconfig:"PENDING_BATCH_SIZE" default:"25"`
	StaleAfter          time.Duration `envconfig:"STALE_AFTER" default:"840h"`

	// Game discovery from day scoreboards; an empty cron disables it
	DiscoveryCron         string   `envconfig:"DISCOVERY_CRON" default:"0 6 * * *"`
	DiscoverySports       []string `envconfig:"DISCOVERY_SPORTS" default:"MIH,WIH,MLA,WLA,WFH,MFB,MBB,WBB"`
	DiscoveryDivisions    []int    `envconfig:"DISCOVERY_DIVISIONS" default:"1"`
	DiscoveryLookbackDays int      `envconfig:"DISCOVERY_LOOKBACK_DAYS" default:"1"`

	// Backfill, e.g. "2015-2024" or "2019"
	BackfillSeasons string `envconfig:"BACKFILL_SEASONS" default:""`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.StatsBaseURL == "" {
		return fmt.Errorf("STATS_BASE_URL is required")
	}

	if c.StatsMaxConcurrency < 1 {
		return fmt.Errorf("STATS_MAX_CONCURRENCY must be at least 1")
	}

	if c.StatsMaxRetries < 0 {
		return fmt.Errorf("STATS_MAX_RETRIES must not be negative")
	}

	if c.DatabaseEnabled && c.DatabasePassword == "" && c.IsProduction() {
		return fmt.Errorf("DATABASE_PASSWORD is required in production")
	}

	for _, code := range c.DiscoverySports {
		if _, err := models.ParseSport(code); err != nil {
			return fmt.Errorf("DISCOVERY_SPORTS: %w", err)
		}
	}

	for _, d := range c.DiscoveryDivisions {
		if d < 1 || d > 3 {
			return fmt.Errorf("DISCOVERY_DIVISIONS: division %d is not 1, 2 or 3", d)
		}
	}

	if c.BackfillSeasons != "" {
		if _, _, err := ParseSeasonRange(c.BackfillSeasons); err != nil {
			return fmt.Errorf("BACKFILL_SEASONS: %w", err)
		}
	}

	return nil
}

// DiscoverySportCodes returns the sports whose day scoreboards are scanned
func (c *Config) DiscoverySportCodes() []models.Sport {
	sports := make([]models.Sport, 0, len(c.DiscoverySports))
	for _, code := range c.DiscoverySports {
		if sport, err := models.ParseSport(code); err == nil {
			sports = append(sports, sport)
		}
	}
	return sports
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// CacheRoot returns CacheDir with a leading "~" expanded to the user's home directory
func (c *Config) CacheRoot() (string, error) {
	if c.CacheDir != "~" && !strings.HasPrefix(c.CacheDir, "~/") {
		return c.CacheDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(c.CacheDir, "~")), nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ParseSeasonRange parses "2015-2024" or "2019" into an inclusive range.
// Reversed ranges are swapped.
func ParseSeasonRange(s string) (from, to int, err error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	switch len(parts) {
	case 1:
		from, err = strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid season %q", s)
		}
		to = from
	case 2:
		from, err = strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid season range %q", s)
		}
		to, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid season range %q", s)
		}
	default:
		return 0, 0, fmt.Errorf("invalid season range %q", s)
	}

	if from > to {
		from, to = to, from
	}
	return from, to, nil
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
