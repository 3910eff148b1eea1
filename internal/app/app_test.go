package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/config"
)

func TestNew_WithoutBackends(t *testing.T) {
	cfg := &config.Config{
		StatsBaseURL:        "http://127.0.0.1:1",
		StatsTimeout:        time.Second,
		StatsMaxConcurrency: 2,
		CacheDir:            t.TempDir(),
		CacheMaxAgePBP:      time.Hour,
	}

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.DB)
	assert.Nil(t, a.Redis)
	assert.NotNil(t, a.Ingest)
	assert.NotNil(t, a.Discovery)

	deps := a.APIDeps()
	assert.Nil(t, deps.Queue)
	assert.Nil(t, deps.Teams)
	assert.Empty(t, deps.Checks)
}
