package nba

import (
	"iter"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/nbapredict/internal/logger"
	"github.com/richard-senior/nbapredict/pkg/util"
)

/////////////////////////////////////////////////////////////////////////
////// Schedules
/////////////////////////////////////////////////////////////////////////

// ParseTeamGames reads the games table of a team schedule page.
// The game_location cell holds "@" when the page team travelled, otherwise
// (or when the page carries no location cell) the page team is at home
func ParseTeamGames(doc *Document, team string, season int) iter.Seq[Game] {
	return func(yield func(Game) bool) {
		table, ok := doc.Table("games")
		if !ok {
			logger.Debug("No games table in", doc.URL)
			return
		}
		for i, row := range bodyRows(table).EachIter() {
			g, ok := teamGameRow(row, team, season)
			if !ok {
				logger.Debug("Skipping games row", i, "in", doc.URL)
				continue
			}
			if !yield(g) {
				return
			}
		}
	}
}

func teamGameRow(row *goquery.Selection, team string, season int) (Game, bool) {
	date, ok := cellText(row, "date_game")
	if !ok || date == "" {
		return Game{}, false
	}
	oppCell, ok := cell(row, "opp_name")
	if !ok {
		return Game{}, false
	}
	opponent, ok := teamCodeFromCell(oppCell)
	if !ok {
		return Game{}, false
	}
	pts, ok := scoreCell(row, "pts")
	if !ok {
		return Game{}, false
	}
	oppPts, ok := scoreCell(row, "opp_pts")
	if !ok {
		return Game{}, false
	}

	location, _ := cellText(row, "game_location")
	if location == "@" {
		return Game{
			Date: date, Season: season, Team: team,
			VisitorTeam: team, VisitorScore: pts,
			HomeTeam: opponent, HomeScore: oppPts,
		}, true
	}
	return Game{
		Date: date, Season: season, Team: team,
		VisitorTeam: opponent, VisitorScore: oppPts,
		HomeTeam: team, HomeScore: pts,
	}, true
}

// ParseGames reads a league month schedule page, which names both sides explicitly.
// Rows are keyed to the home team
func ParseGames(doc *Document, season int) iter.Seq[Game] {
	return func(yield func(Game) bool) {
		table, ok := doc.Table("schedule")
		if !ok {
			logger.Debug("No schedule table in", doc.URL)
			return
		}
		for i, row := range bodyRows(table).EachIter() {
			g, ok := scheduleRow(row, season)
			if !ok {
				logger.Debug("Skipping schedule row", i, "in", doc.URL)
				continue
			}
			if !yield(g) {
				return
			}
		}
	}
}

func scheduleRow(row *goquery.Selection, season int) (Game, bool) {
	date, ok := cellText(row, "date_game")
	if !ok || date == "" {
		return Game{}, false
	}
	visitorCell, ok := cell(row, "visitor_team_name")
	if !ok {
		return Game{}, false
	}
	homeCell, ok := cell(row, "home_team_name")
	if !ok {
		return Game{}, false
	}
	visitor, ok := teamCodeFromCell(visitorCell)
	if !ok {
		return Game{}, false
	}
	home, ok := teamCodeFromCell(homeCell)
	if !ok {
		return Game{}, false
	}
	visitorPts, ok := scoreCell(row, "visitor_pts")
	if !ok {
		return Game{}, false
	}
	homePts, ok := scoreCell(row, "home_pts")
	if !ok {
		return Game{}, false
	}
	return Game{
		Date: date, Season: season, Team: home,
		VisitorTeam: visitor, VisitorScore: visitorPts,
		HomeTeam: home, HomeScore: homePts,
	}, true
}

// ParseScheduleMonths returns the absolute URLs of the month pages linked from a season index
func ParseScheduleMonths(doc *Document, base string) []string {
	links := doc.Find(`div#div_games th[data-stat="month_name"] a`)
	if links.Length() == 0 {
		links = doc.Find(`div.filter a`)
	}

	var urls []string
	seen := map[string]bool{}
	for _, a := range links.EachIter() {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			continue
		}
		u := absoluteURL(base, href)
		if seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

/////////////////////////////////////////////////////////////////////////
////// Rosters and players
/////////////////////////////////////////////////////////////////////////

// ParseRoster reads the roster table of a team season page
func ParseRoster(doc *Document, team string, season int) iter.Seq[RosterEntry] {
	return func(yield func(RosterEntry) bool) {
		table, ok := doc.Table("roster")
		if !ok {
			logger.Debug("No roster table in", doc.URL)
			return
		}
		for i, row := range bodyRows(table).EachIter() {
			e, ok := rosterRow(row, team, season)
			if !ok {
				logger.Debug("Skipping roster row", i, "in", doc.URL)
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

func rosterRow(row *goquery.Selection, team string, season int) (RosterEntry, bool) {
	playerCell, ok := cell(row, "player")
	if !ok {
		return RosterEntry{}, false
	}
	e := RosterEntry{
		PlayerName: strings.TrimSpace(playerCell.Text()),
		Team:       team,
		Season:     season,
	}
	e.Position, _ = cellText(row, "pos")
	e.Height, _ = cellText(row, "height")
	e.Weight, _ = cellText(row, "weight")
	e.BirthDate, _ = cellText(row, "birth_date")
	for _, v := range []string{e.PlayerName, e.Position, e.Height, e.Weight, e.BirthDate} {
		if v == "" {
			return RosterEntry{}, false
		}
	}

	e.PlayerID = playerIDFromCell(playerCell)
	if e.PlayerID == "" {
		e.PlayerID = LegacyPlayerID(e.PlayerName)
	}
	return e, true
}

// ParseStatLine returns the points per game of the player's row for season
func ParseStatLine(doc *Document, playerID string, season int) (PlayerStat, bool) {
	table, ok := doc.Table("per_game")
	if !ok {
		table, ok = doc.Table("per_game_stats")
	}
	if !ok {
		logger.Debug("No per game table in", doc.URL)
		return PlayerStat{}, false
	}

	label := SeasonLabel(season)
	for _, row := range bodyRows(table).EachIter() {
		s, ok := cellText(row, "season")
		if !ok {
			s, ok = cellText(row, "year_id")
		}
		if !ok || s != label {
			continue
		}
		raw, _ := cellText(row, "pts_per_g")
		ppg, err := strconv.ParseFloat(raw, 64)
		if err != nil || ppg < 0 {
			logger.Debug("Unreadable points per game", raw, "in", doc.URL)
			continue
		}
		return PlayerStat{PlayerID: playerID, Season: season, PointsPerGame: ppg}, true
	}
	return PlayerStat{}, false
}

/////////////////////////////////////////////////////////////////////////
////// Cell helpers
/////////////////////////////////////////////////////////////////////////

// scoreCell returns a score only when the cell is a plain digit string
func scoreCell(row *goquery.Selection, stat string) (int, bool) {
	text, ok := cellText(row, stat)
	if !ok || !util.IsDigits(text) {
		return 0, false
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}

// teamCodeFromCell prefers the code in a /teams/XXX/ link and falls back to the displayed name
func teamCodeFromCell(c *goquery.Selection) (string, bool) {
	if href, ok := c.Find("a").First().Attr("href"); ok {
		if code, ok := teamCodeFromHref(href); ok {
			return code, true
		}
	}
	if abbr, ok := c.Attr("csk"); ok && len(abbr) >= 3 && IsTeamCode(abbr[:3]) {
		return abbr[:3], true
	}
	return TeamCodeForName(c.Text())
}

func teamCodeFromHref(href string) (string, bool) {
	parts := strings.Split(strings.Trim(href, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "teams" && IsTeamCode(parts[i+1]) {
			return parts[i+1], true
		}
	}
	return "", false
}

// playerIDFromCell reads the site identifier from data-append-csv or the player link
func playerIDFromCell(c *goquery.Selection) string {
	if id, ok := c.Attr("data-append-csv"); ok && id != "" {
		return id
	}
	href, ok := c.Find("a").First().Attr("href")
	if !ok || !strings.Contains(href, "/players/") {
		return ""
	}
	name := href[strings.LastIndex(href, "/")+1:]
	return strings.TrimSuffix(name, ".html")
}
