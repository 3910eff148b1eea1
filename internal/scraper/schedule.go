package scraper

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	contestHrefRe = regexp.MustCompile(`/contests/(\d+)`)
	contestRowRe  = regexp.MustCompile(`^contest_(\d+)$`)
	gameNumberRe  = regexp.MustCompile(`\s*\(\d+\)\s*$`)
)

// ScheduledGame is one contest listed on a day's scoreboard
type ScheduledGame struct {
	GameID       int       `json:"game_id"`
	GameDatetime time.Time `json:"game_datetime"`
	AwayTeamID   int       `json:"away_team_id"`
	AwayTeamName string    `json:"away_team_name"`
	AwayScore    int       `json:"away_score"`
	HomeTeamID   int       `json:"home_team_id"`
	HomeTeamName string    `json:"home_team_name"`
	HomeScore    int       `json:"home_score"`
}

// ParseDaySchedule reads a livestream scoreboard page. Canceled and
// postponed games are left out. A page without any games yields an empty list.
func ParseDaySchedule(r io.Reader) ([]ScheduledGame, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedPage, err)
	}

	var games []ScheduledGame
	var parseErr error
	doc.Find("div.table-responsive").EachWithBreak(func(_ int, box *goquery.Selection) bool {
		game, ok, err := parseScoreboardBox(box)
		if err != nil {
			parseErr = fmt.Errorf("%w: %w", ErrUnexpectedPage, err)
			return false
		}
		if ok {
			games = append(games, game)
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return games, nil
}

func parseScoreboardBox(box *goquery.Selection) (ScheduledGame, bool, error) {
	var game ScheduledGame

	id, err := scoreboardGameID(box)
	if err != nil {
		return game, false, err
	}
	game.GameID = id

	dateText := strings.TrimSpace(box.Find("div.col-6.p-0").First().Text())
	dateText = gameNumberRe.ReplaceAllString(dateText, "")
	game.GameDatetime, err = ParseGameDatetime(dateText)
	if err != nil {
		return game, false, fmt.Errorf("contest %d: %w", id, err)
	}

	rows := box.Find(fmt.Sprintf("tr#contest_%d", id))
	if rows.Length() < 2 {
		return game, false, fmt.Errorf("contest %d: expected 2 team rows, found %d", id, rows.Length())
	}

	var skip bool
	game.AwayTeamID, game.AwayTeamName, game.AwayScore, skip = parseScoreboardTeam(rows.Eq(0))
	if skip {
		return game, false, nil
	}
	game.HomeTeamID, game.HomeTeamName, game.HomeScore, skip = parseScoreboardTeam(rows.Eq(1))
	if skip {
		return game, false, nil
	}
	return game, true, nil
}

// scoreboardGameID reads the contest ID from the box's links, falling back to its row IDs
func scoreboardGameID(box *goquery.Selection) (int, error) {
	var id int
	box.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if m := contestHrefRe.FindStringSubmatch(href); m != nil {
			id, _ = strconv.Atoi(m[1])
		}
		return id == 0
	})
	if id > 0 {
		return id, nil
	}

	box.Find("tr[id]").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		rowID, _ := tr.Attr("id")
		if m := contestRowRe.FindStringSubmatch(rowID); m != nil {
			id, _ = strconv.Atoi(m[1])
		}
		return id == 0
	})
	if id > 0 {
		return id, nil
	}
	return 0, fmt.Errorf("scoreboard entry has no contest id")
}

// parseScoreboardTeam reads one team row. skip is set for canceled and postponed games.
func parseScoreboardTeam(row *goquery.Selection) (teamID int, name string, score int, skip bool) {
	cells := row.Find("td")

	name = strings.TrimSpace(cells.Eq(0).Find("img").AttrOr("alt", ""))
	if name == "" {
		name = strings.TrimSpace(cells.Eq(1).Text())
	}

	if href, ok := cells.Eq(1).Find("a").Attr("href"); ok {
		if m := teamHrefRe.FindStringSubmatch(href); m != nil {
			teamID, _ = strconv.Atoi(m[1])
		}
	}

	scoreText := strings.TrimSpace(strings.ReplaceAll(cells.Last().Text(), "\u00a0", ""))
	lower := strings.ToLower(scoreText)
	if strings.Contains(lower, "canceled") || strings.Contains(lower, "ppd") {
		return 0, "", 0, true
	}
	score, _ = strconv.Atoi(scoreText)
	return teamID, name, score, false
}
