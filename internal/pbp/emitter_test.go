package pbp

import (
	"testing"
	"time"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmit(t *testing.T) {
	game := &models.GameInfo{
		GameID:       5512345,
		SportID:      models.MensIceHockey,
		Season:       2024,
		GameDatetime: time.Date(2024, 1, 12, 19, 0, 0, 0, time.UTC),
		StadiumName:  "Yost Ice Arena",
		Attendance:   5800,
		AwayTeamID:   11,
		AwayTeamName: "Minnesota",
		HomeTeamID:   22,
		HomeTeamName: "Michigan",
	}

	plays := []RawPlay{
		{PeriodLabel: "1st Period", ClockText: " 12:00 ", ActingTeam: team(22), Description: "Goal by Smith ", Score: score(0, 1)},
	}
	result, err := NewNormalizer(threePeriods).Normalize(plays)
	require.NoError(t, err)

	records := Emit(game, result.Plays)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, 2024, first.Season)
	assert.Equal(t, models.MensIceHockey, first.SportID)
	assert.Equal(t, 5512345, first.GameID)
	assert.Equal(t, "12:00", first.GameTimeStr)
	assert.Equal(t, "Goal by Smith", first.EventText)
	assert.Equal(t, 720, first.PeriodSecondsRemaining)
	assert.Equal(t, 3120, first.GameSecondsRemaining)
	assert.Equal(t, 22, *first.EventTeam)
	assert.Equal(t, 1, first.HomeScore)
	assert.Equal(t, 1, first.EventNum)
	assert.Equal(t, "Yost Ice Arena", first.StadiumName)
	assert.Equal(t, "Michigan", first.HomeTeamName)

	end := records[1]
	assert.Equal(t, 2, end.EventNum)
	assert.Equal(t, EndOfPeriodText, end.EventText)
	assert.Nil(t, end.EventTeam)
	assert.Equal(t, 2400, end.GameSecondsRemaining)
}

func TestEmit_AssignsSequenceWhenMissing(t *testing.T) {
	game := &models.GameInfo{GameID: 1, SportID: models.MensLacrosse}
	records := Emit(game, []NormalizedPlay{{}, {}, {}})

	for i, r := range records {
		assert.Equal(t, i+1, r.EventNum)
	}
}
