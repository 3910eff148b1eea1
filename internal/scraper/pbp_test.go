package scraper

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/pbp"
)

func TestParsePlayByPlay(t *testing.T) {
	f, err := os.Open("testdata/hockey_pbp.html")
	require.NoError(t, err)
	defer f.Close()

	info, plays, err := ParsePlayByPlay(f)
	require.NoError(t, err)

	assert.Equal(t, 2024, info.Season)
	assert.Equal(t, "Yost Ice Arena", info.StadiumName)
	assert.Equal(t, 5800, info.Attendance)
	assert.Equal(t, 557157, info.AwayTeamID)
	assert.Equal(t, "Minnesota", info.AwayTeamName)
	assert.Equal(t, 557244, info.HomeTeamID)
	assert.Equal(t, "Michigan", info.HomeTeamName)
	assert.Equal(t, 19, info.GameDatetime.Hour())
	assert.Equal(t, "EST", zoneName(info.GameDatetime))

	require.Len(t, plays, 8)

	start := plays[0]
	assert.Equal(t, "1st Period", start.PeriodLabel)
	assert.Equal(t, "Game Start", start.Description)
	assert.Nil(t, start.ActingTeam)
	assert.Nil(t, start.Score)

	goal := plays[2]
	assert.Equal(t, "06:30", goal.ClockText)
	assert.Equal(t, "GOAL by Jones, Ann", goal.Description)
	require.NotNil(t, goal.ActingTeam)
	assert.Equal(t, 557244, *goal.ActingTeam)
	assert.Equal(t, &pbp.Score{Away: 0, Home: 1}, goal.Score)

	assert.Equal(t, "2nd Period", plays[4].PeriodLabel)
	assert.Equal(t, 557157, *plays[4].ActingTeam)
	assert.Equal(t, "OT", plays[7].PeriodLabel)
}

func zoneName(t time.Time) string {
	name, _ := t.Zone()
	return name
}

func TestParsePlayByPlay_NormalizesEndToEnd(t *testing.T) {
	f, err := os.Open("testdata/hockey_pbp.html")
	require.NoError(t, err)
	defer f.Close()

	_, plays, err := ParsePlayByPlay(f)
	require.NoError(t, err)

	spec := pbp.PeriodSpec{RegulationPeriodSeconds: 1200, RegulationPeriodCount: 3, OvertimePeriodSeconds: 1200}
	result, err := pbp.NewNormalizer(spec).Normalize(plays)
	require.NoError(t, err)

	assert.Equal(t, pbp.CountDown, result.Orientation)
	assert.Equal(t, 1, result.Skipped)
	// 7 parsed rows kept plus one end-of-period row for each of the 3 sections
	assert.Len(t, result.Plays, 10)
}

func TestParsePlayByPlay_MissingInfoTable(t *testing.T) {
	_, _, err := ParsePlayByPlay(strings.NewReader("<html><body><p>Not found</p></body></html>"))
	assert.ErrorIs(t, err, ErrUnexpectedPage)
}

func TestParseGameDatetime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"01/12/2024 07:00 PM", time.Date(2024, 1, 12, 19, 0, 0, 0, eastern)},
		{"03/02/2021", time.Date(2021, 3, 2, 0, 0, 0, 0, eastern)},
		{"11/05/2023 TBA", time.Date(2023, 11, 5, 0, 0, 0, 0, eastern)},
		{"11/05/2023 tbd", time.Date(2023, 11, 5, 0, 0, 0, 0, eastern)},
		{" 10/01/2022   01:30 PM ", time.Date(2022, 10, 1, 13, 30, 0, 0, eastern)},
	}

	for _, tt := range tests {
		got, err := ParseGameDatetime(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%q: got %s", tt.in, got)
	}

	_, err := ParseGameDatetime("next tuesday")
	assert.Error(t, err)
}

func TestSeasonOf(t *testing.T) {
	assert.Equal(t, 2020, SeasonOf(time.Date(2021, 3, 2, 0, 0, 0, 0, eastern)))
	assert.Equal(t, 2021, SeasonOf(time.Date(2021, 9, 2, 0, 0, 0, 0, eastern)))
	assert.Equal(t, 2024, SeasonOf(time.Date(2024, 1, 12, 0, 0, 0, 0, eastern)))
}

func TestParseScore(t *testing.T) {
	assert.Equal(t, &pbp.Score{Away: 3, Home: 2}, ParseScore("3-2"))
	assert.Equal(t, &pbp.Score{Away: 10, Home: 7}, ParseScore(" 10 - 7 "))
	assert.Nil(t, ParseScore(""))
	assert.Nil(t, ParseScore("-"))
	assert.Nil(t, ParseScore("Final"))
}

func TestParseAttendance(t *testing.T) {
	assert.Equal(t, 5800, parseAttendance("Attendance: 5,800"))
	assert.Equal(t, 312, parseAttendance("312"))
	assert.Equal(t, 0, parseAttendance("Attendance:"))
}
