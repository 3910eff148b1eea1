package pbp

import (
	"strings"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
)

// Emit attaches the game's static context to each normalized play
func Emit(game *models.GameInfo, plays []NormalizedPlay) []models.PlayRecord {
	records := make([]models.PlayRecord, 0, len(plays))
	for i, play := range plays {
		seq := play.SequenceNumber
		if seq == 0 {
			seq = i + 1
		}
		records = append(records, models.PlayRecord{
			Season:                 game.Season,
			SportID:                game.SportID,
			GameID:                 game.GameID,
			GameTimeStr:            strings.TrimSpace(play.ClockText),
			PeriodSecondsRemaining: play.PeriodSecondsRemaining,
			GameSecondsRemaining:   play.GameSecondsRemaining,
			ClockMilliseconds:      play.ClockMilliseconds,
			PeriodNum:              play.PeriodNumber,
			EventTeam:              play.ActingTeam,
			EventText:              strings.TrimSpace(play.Description),
			IsOvertime:             play.IsOvertime,
			AwayScore:              play.AwayScore,
			HomeScore:              play.HomeScore,
			EventNum:               seq,
			GameDatetime:           game.GameDatetime,
			StadiumName:            game.StadiumName,
			Attendance:             game.Attendance,
			AwayTeamID:             game.AwayTeamID,
			AwayTeamName:           game.AwayTeamName,
			HomeTeamID:             game.HomeTeamID,
			HomeTeamName:           game.HomeTeamName,
		})
	}
	return records
}
