package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
)

// setupTestRedis connects to a local Redis on a scratch database, skipping when none answers
func setupTestRedis(t *testing.T) (*RedisCache, context.Context) {
	t.Helper()
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})

	return NewRedisCacheFromClient(client, time.Minute), ctx
}

func TestRedisCache_SetAndGet(t *testing.T) {
	c, ctx := setupTestRedis(t)

	_, err := c.GetPlays(ctx, models.MensIceHockey, 5512345)
	assert.ErrorIs(t, err, ErrCacheMiss)

	plays := samplePlays(2024)
	require.NoError(t, c.SetPlays(ctx, models.MensIceHockey, 5512345, plays))

	got, err := c.GetPlays(ctx, models.MensIceHockey, 5512345)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, plays[0].EventText, got[0].EventText)
	assert.Equal(t, *plays[0].EventTeam, *got[0].EventTeam)

	ttl, err := c.client.TTL(ctx, playsKey(models.MensIceHockey, 5512345)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	n, err := c.client.XLen(ctx, UpdatesStream).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, c.Delete(ctx, models.MensIceHockey, 5512345))
	_, err = c.GetPlays(ctx, models.MensIceHockey, 5512345)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_WarmDoesNotAnnounce(t *testing.T) {
	c, ctx := setupTestRedis(t)

	plays := samplePlays(2024)
	require.NoError(t, c.WarmPlays(ctx, models.WomensLacrosse, 77, plays))

	got, err := c.GetPlays(ctx, models.WomensLacrosse, 77)
	require.NoError(t, err)
	assert.Len(t, got, len(plays))

	n, err := c.client.XLen(ctx, UpdatesStream).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewRedisCacheFromClient_DefaultTTL(t *testing.T) {
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), 0)
	defer c.Close()
	assert.Equal(t, DefaultPlaysTTL, c.ttl)
	assert.Equal(t, "pbp:MIH:42", playsKey(models.MensIceHockey, 42))
}
