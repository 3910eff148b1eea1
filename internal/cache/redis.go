package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/metrics"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
)

// DefaultPlaysTTL is used when Config.TTL is zero
const DefaultPlaysTTL = 24 * time.Hour

// UpdatesStream receives an entry each time a game's play-by-play is refreshed
const UpdatesStream = "pbp.updates"

// Config holds Redis connection settings
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache is the shared play-by-play cache in front of the disk cache
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisCacheFromClient(client, cfg.TTL), nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultPlaysTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func playsKey(sport models.Sport, gameID int) string {
	return fmt.Sprintf("pbp:%s:%d", sport, gameID)
}

// GetPlays returns a game's cached rows, or ErrCacheMiss
func (c *RedisCache) GetPlays(ctx context.Context, sport models.Sport, gameID int) ([]models.PlayRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordCacheOperation("redis", "get", time.Since(start).Seconds())
	}()

	data, err := c.client.Get(ctx, playsKey(sport, gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheMiss("redis")
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plays from redis: %w", err)
	}

	var records []models.PlayRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling plays: %w", err)
	}

	metrics.RecordCacheHit("redis")
	return records, nil
}

// SetPlays stores a game's rows and announces the refresh on UpdatesStream
func (c *RedisCache) SetPlays(ctx context.Context, sport models.Sport, gameID int, records []models.PlayRecord) error {
	return c.write(ctx, sport, gameID, records, true)
}

// WarmPlays stores rows copied from a slower tier. Nothing is announced
// because the table itself did not change.
func (c *RedisCache) WarmPlays(ctx context.Context, sport models.Sport, gameID int, records []models.PlayRecord) error {
	return c.write(ctx, sport, gameID, records, false)
}

func (c *RedisCache) write(ctx context.Context, sport models.Sport, gameID int, records []models.PlayRecord, announce bool) error {
	start := time.Now()
	defer func() {
		metrics.RecordCacheOperation("redis", "set", time.Since(start).Seconds())
	}()

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling plays: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, playsKey(sport, gameID), data, c.ttl)
	if announce {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: UpdatesStream,
			MaxLen: 10000,
			Approx: true,
			Values: map[string]interface{}{
				"sport":   string(sport),
				"game_id": gameID,
				"plays":   len(records),
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write plays to redis: %w", err)
	}
	return nil
}

// Delete drops a game's cached rows
func (c *RedisCache) Delete(ctx context.Context, sport models.Sport, gameID int) error {
	return c.client.Del(ctx, playsKey(sport, gameID)).Err()
}

// Health pings Redis
func (c *RedisCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
