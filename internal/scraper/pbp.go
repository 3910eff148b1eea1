package scraper

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/PuerkitoBio/goquery"

	"github.com/armstjc/ncaa-stats-py-sub000/internal/models"
	"github.com/armstjc/ncaa-stats-py-sub000/internal/pbp"
)

const (
	infoTableSelector = `td.d-none.d-md-table-cell table[style="border-collapse: collapse"]`
	teamCardSelector  = `td.grey_text.d-none.d-sm-table-cell[valign="center"]`
	sectionSelector   = `div.row.justify-content-md-center.w-100`
)

// ErrUnexpectedPage is returned when a page lacks the markup the parsers expect
var ErrUnexpectedPage = errors.New("unexpected page layout")

var (
	eastern = mustLoadLocation("America/New_York")

	attendanceRe = regexp.MustCompile(`[0-9][0-9,]*`)
	teamHrefRe   = regexp.MustCompile(`/teams?/(\d+)`)
	scoreRe      = regexp.MustCompile(`^\s*(\d+)\s*-\s*(\d+)\s*$`)
)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// ParsePlayByPlay reads a contest's play-by-play page. The returned GameInfo
// has no GameID or SportID; the caller knows both.
func ParsePlayByPlay(r io.Reader) (*models.GameInfo, []pbp.RawPlay, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnexpectedPage, err)
	}

	info, err := parseGameInfo(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnexpectedPage, err)
	}

	plays := parsePlays(doc, info)
	return info, plays, nil
}

func parseGameInfo(doc *goquery.Document) (*models.GameInfo, error) {
	infoTable := doc.Find(infoTableSelector).First()
	if infoTable.Length() == 0 {
		return nil, fmt.Errorf("game info table not found")
	}

	rows := infoTable.Find("tr")
	if rows.Length() < 5 {
		return nil, fmt.Errorf("game info table has %d rows, expected at least 5", rows.Length())
	}

	cell := func(i int) string {
		return strings.TrimSpace(rows.Eq(i).Find("td").First().Text())
	}

	gameTime, err := ParseGameDatetime(cell(3))
	if err != nil {
		return nil, err
	}

	info := &models.GameInfo{
		Season:       SeasonOf(gameTime),
		GameDatetime: gameTime,
		StadiumName:  cell(4),
	}
	if rows.Length() > 5 {
		info.Attendance = parseAttendance(cell(5))
	}

	cards := doc.Find(teamCardSelector)
	if cards.Length() < 2 {
		return nil, fmt.Errorf("expected 2 team cards, found %d", cards.Length())
	}

	info.AwayTeamID, info.AwayTeamName, err = parseTeamLink(cards.Eq(0))
	if err != nil {
		return nil, fmt.Errorf("away team: %w", err)
	}
	info.HomeTeamID, info.HomeTeamName, err = parseTeamLink(cards.Eq(1))
	if err != nil {
		return nil, fmt.Errorf("home team: %w", err)
	}

	return info, nil
}

func parseTeamLink(card *goquery.Selection) (int, string, error) {
	link := card.Find("a").First()
	href, ok := link.Attr("href")
	if !ok {
		return 0, "", fmt.Errorf("team link not found")
	}
	m := teamHrefRe.FindStringSubmatch(href)
	if m == nil {
		return 0, "", fmt.Errorf("unexpected team link %q", href)
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", fmt.Errorf("unexpected team link %q: %w", href, err)
	}
	return id, strings.TrimSpace(link.Text()), nil
}

func parsePlays(doc *goquery.Document, info *models.GameInfo) []pbp.RawPlay {
	var plays []pbp.RawPlay
	doc.Find(sectionSelector).Each(func(_ int, section *goquery.Selection) {
		label := strings.TrimSpace(section.Find("div.card-header").First().Text())

		section.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() < 4 {
				return
			}
			text := func(i int) string {
				return strings.TrimSpace(cells.Eq(i).Text())
			}

			play := pbp.RawPlay{
				PeriodLabel: label,
				ClockText:   text(0),
				Score:       ParseScore(text(2)),
			}
			if away := text(1); away != "" {
				team := info.AwayTeamID
				play.ActingTeam = &team
				play.Description = away
			} else if home := text(3); home != "" {
				team := info.HomeTeamID
				play.ActingTeam = &team
				play.Description = home
			}
			if pbp.IsAdministrative(play.Description) {
				play.ActingTeam = nil
			}
			plays = append(plays, play)
		})
	})
	return plays
}

// ParseGameDatetime parses the game date cell, interpreted in US Eastern time.
// Accepts "01/02/2006 03:04 PM", "01/02/2006" and dates followed by TBA/TBD.
func ParseGameDatetime(s string) (time.Time, error) {
	s = strings.Join(strings.Fields(s), " ")
	upper := strings.ToUpper(s)
	for _, suffix := range []string{" TBA", " TBD"} {
		if strings.HasSuffix(upper, suffix) {
			s = s[:len(s)-len(suffix)]
			break
		}
	}

	layout := "01/02/2006"
	if strings.Contains(s, ":") {
		layout = "01/02/2006 03:04 PM"
	}
	t, err := time.ParseInLocation(layout, s, eastern)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse game date %q: %w", s, err)
	}
	return t, nil
}

// SeasonOf returns the season a game belongs to. Games played before
// August 2021 belong to the delayed 2020 season.
func SeasonOf(t time.Time) int {
	if t.Year() == 2021 && t.Month() < time.August {
		return 2020
	}
	return t.Year()
}

// ParseScore parses a running score cell ("3-2"); anything else yields nil
func ParseScore(s string) *pbp.Score {
	m := scoreRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	away, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	home, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	return &pbp.Score{Away: away, Home: home}
}

func parseAttendance(s string) int {
	m := attendanceRe.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0
	}
	return n
}
