package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
)

func samplePlays(season int) []models.PlayRecord {
	team := 557244
	played := time.Date(season, 1, 12, 19, 0, 0, 0, time.UTC)
	return []models.PlayRecord{
		{
			Season: season, SportID: models.MensIceHockey, GameID: 5512345,
			GameTimeStr: "12:00", PeriodSecondsRemaining: 720, GameSecondsRemaining: 3120,
			PeriodNum: 1, EventTeam: &team, EventText: "GOAL by Jones, Ann", AwayScore: 0, HomeScore: 1,
			EventNum: 1, GameDatetime: played, StadiumName: "Yost Ice Arena", Attendance: 5800,
			AwayTeamID: 557157, AwayTeamName: "Minnesota", HomeTeamID: team, HomeTeamName: "Michigan",
		},
		{
			Season: season, SportID: models.MensIceHockey, GameID: 5512345,
			GameTimeStr: "00:00", GameSecondsRemaining: 2400, PeriodNum: 1,
			EventText: "End of Period", HomeScore: 1, EventNum: 2, GameDatetime: played,
			AwayTeamID: 557157, HomeTeamID: team,
		},
	}
}

func TestDiskCache_StoreAndLoad(t *testing.T) {
	c := NewDiskCache(t.TempDir(), 35*24*time.Hour)
	plays := samplePlays(time.Now().Year())

	_, err := c.Load(models.MensIceHockey, 5512345)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Store(models.MensIceHockey, 5512345, plays))

	loaded, err := c.Load(models.MensIceHockey, 5512345)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "GOAL by Jones, Ann", loaded[0].EventText)
	assert.Equal(t, 557244, *loaded[0].EventTeam)
	assert.Nil(t, loaded[1].EventTeam)
	assert.Equal(t, 2400, loaded[1].GameSecondsRemaining)
	assert.True(t, plays[0].GameDatetime.Equal(loaded[0].GameDatetime))

	// separate folder per sport
	_, err = c.Load(models.WomensIceHockey, 5512345)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDiskCache_Path(t *testing.T) {
	c := NewDiskCache("/data", time.Hour)
	assert.Equal(t, filepath.Join("/data", "hockey_MIH", "raw_pbp", "42_raw_pbp.csv"), c.Path(models.MensIceHockey, 42))
	assert.Equal(t, filepath.Join("/data", "field_hockey_WFH", "raw_pbp", "7_raw_pbp.csv"), c.Path(models.WomensFieldHockey, 7))
}

func TestDiskCache_StaleEntry(t *testing.T) {
	root := t.TempDir()
	c := NewDiskCache(root, 35*24*time.Hour)
	now := time.Now()

	require.NoError(t, c.Store(models.MensLacrosse, 1, samplePlays(now.Year())))
	require.NoError(t, c.Store(models.MensLacrosse, 2, samplePlays(now.Year()-5)))

	old := now.Add(-40 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(c.Path(models.MensLacrosse, 1), old, old))
	require.NoError(t, os.Chtimes(c.Path(models.MensLacrosse, 2), old, old))

	_, err := c.Load(models.MensLacrosse, 1)
	assert.ErrorIs(t, err, ErrCacheMiss, "current season entries expire")

	loaded, err := c.Load(models.MensLacrosse, 2)
	require.NoError(t, err, "finished seasons never expire")
	assert.Len(t, loaded, 2)
}

func TestDiskCache_CorruptFile(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	path := c.Path(models.Football, 9)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not,a,play,table\n"), 0o644))

	_, err := c.Load(models.Football, 9)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDiskCache_Remove(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	require.NoError(t, c.Store(models.Football, 9, samplePlays(2024)))
	require.NoError(t, c.Remove(models.Football, 9))
	require.NoError(t, c.Remove(models.Football, 9))

	_, err := os.Stat(c.Path(models.Football, 9))
	assert.True(t, os.IsNotExist(err))
}

func TestWritePlaysCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlaysCSV(&buf, samplePlays(2024)))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.True(t, bytes.HasPrefix(lines[0], []byte("season,sport_id,game_id,game_time_str")))
	assert.Contains(t, string(lines[1]), `"GOAL by Jones, Ann"`)
}
