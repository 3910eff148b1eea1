package ingest

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/scraper"
)

type fakeScheduleFetcher struct {
	page     []byte
	err      error
	sport    string
	division int
	date     time.Time
}

func (f *fakeScheduleFetcher) DaySchedulePage(ctx context.Context, sportCode string, division int, date time.Time) ([]byte, error) {
	f.sport, f.division, f.date = sportCode, division, date
	return f.page, f.err
}

type fakeEnqueuer struct {
	queued []int
	err    error
}

func (q *fakeEnqueuer) Enqueue(ctx context.Context, sport models.Sport, gameID int) (*models.Game, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.queued = append(q.queued, gameID)
	return &models.Game{SportID: sport, GameID: gameID, Status: models.GameStatusPending}, nil
}

func scheduleFixture(t *testing.T) []byte {
	page, err := os.ReadFile("../scraper/testdata/day_schedule.html")
	require.NoError(t, err)
	return page
}

func TestDiscoverDay(t *testing.T) {
	fetcher := &fakeScheduleFetcher{page: scheduleFixture(t)}
	queue := &fakeEnqueuer{}
	date := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)

	games, err := NewDiscoverer(fetcher, queue).DiscoverDay(context.Background(), models.MensIceHockey, 1, date)
	require.NoError(t, err)

	assert.Len(t, games, 2)
	assert.Equal(t, []int{5512345, 5512400}, queue.queued)
	assert.Equal(t, "MIH", fetcher.sport)
	assert.Equal(t, 1, fetcher.division)
	assert.Equal(t, date, fetcher.date)
}

func TestDiscoverDay_WithoutQueue(t *testing.T) {
	games, err := NewDiscoverer(&fakeScheduleFetcher{page: scheduleFixture(t)}, nil).
		DiscoverDay(context.Background(), models.MensIceHockey, 1, time.Now())
	require.NoError(t, err)
	assert.Len(t, games, 2)
}

func TestDiscoverDay_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewDiscoverer(&fakeScheduleFetcher{err: errors.New("timeout")}, &fakeEnqueuer{}).
		DiscoverDay(ctx, models.MensLacrosse, 1, time.Now())
	assert.Error(t, err)

	page := []byte(`<div class="table-responsive"><table><tr><td>?</td></tr></table></div>`)
	_, err = NewDiscoverer(&fakeScheduleFetcher{page: page}, &fakeEnqueuer{}).
		DiscoverDay(ctx, models.MensLacrosse, 1, time.Now())
	assert.ErrorIs(t, err, scraper.ErrUnexpectedPage)

	_, err = NewDiscoverer(&fakeScheduleFetcher{page: scheduleFixture(t)}, &fakeEnqueuer{err: errors.New("db down")}).
		DiscoverDay(ctx, models.MensIceHockey, 1, time.Now())
	assert.Error(t, err)
}
