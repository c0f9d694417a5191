package nba

/**
* nba is a library for collecting NBA schedules and rosters from
* basketball-reference and predicting the outcome of a game between two teams
* - Fetches team schedules, rosters and player pages at a polite rate
* - Persists games, rosters and player stats to sqlite
* - Predicts a score line from historical averages
* - Predicts a winner with a small feed forward network over team one-hot features
 */

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/richard-senior/nbapredict/pkg/util"
)

const DefaultBaseURL = "https://www.basketball-reference.com"

// TeamCodes is the closed set of franchise abbreviations used by the source site
var TeamCodes = []string{
	"ATL", "BOS", "BRK", "CHO", "CHI", "CLE", "DAL", "DEN", "DET", "GSW",
	"HOU", "IND", "LAC", "LAL", "MEM", "MIA", "MIL", "MIN", "NOP", "NYK",
	"OKC", "ORL", "PHI", "PHO", "POR", "SAC", "SAS", "TOR", "UTA", "WAS",
}

// teamNames maps the franchise names shown on schedule pages to their codes
var teamNames = map[string]string{
	"Atlanta Hawks":          "ATL",
	"Boston Celtics":         "BOS",
	"Brooklyn Nets":          "BRK",
	"Charlotte Hornets":      "CHO",
	"Chicago Bulls":          "CHI",
	"Cleveland Cavaliers":    "CLE",
	"Dallas Mavericks":       "DAL",
	"Denver Nuggets":         "DEN",
	"Detroit Pistons":        "DET",
	"Golden State Warriors":  "GSW",
	"Houston Rockets":        "HOU",
	"Indiana Pacers":         "IND",
	"Los Angeles Clippers":   "LAC",
	"LA Clippers":            "LAC",
	"Los Angeles Lakers":     "LAL",
	"Memphis Grizzlies":      "MEM",
	"Miami Heat":             "MIA",
	"Milwaukee Bucks":        "MIL",
	"Minnesota Timberwolves": "MIN",
	"New Orleans Pelicans":   "NOP",
	"New York Knicks":        "NYK",
	"Oklahoma City Thunder":  "OKC",
	"Orlando Magic":          "ORL",
	"Philadelphia 76ers":     "PHI",
	"Phoenix Suns":           "PHO",
	"Portland Trail Blazers": "POR",
	"Sacramento Kings":       "SAC",
	"San Antonio Spurs":      "SAS",
	"Toronto Raptors":        "TOR",
	"Utah Jazz":              "UTA",
	"Washington Wizards":     "WAS",
}

// IsTeamCode returns true if code is one of the known franchise abbreviations
func IsTeamCode(code string) bool {
	return slices.Contains(TeamCodes, code)
}

// NormaliseTeam upper cases and validates a user supplied team code
func NormaliseTeam(team string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(team))
	if !IsTeamCode(code) {
		return "", fmt.Errorf("unknown team code: %q", team)
	}
	return code, nil
}

// TeamCodeForName returns the code for a full franchise name, or for a value that already is a code.
// Near misses such as a dropped letter are tolerated
func TeamCodeForName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if IsTeamCode(name) {
		return name, true
	}
	if code, ok := teamNames[name]; ok {
		return code, true
	}
	if match, ok := util.ClosestMatch(name, slices.Sorted(maps.Keys(teamNames)), 2); ok {
		return teamNames[match], true
	}
	return "", false
}

// SeasonLabel renders a season year the way player pages label it, 2021 becomes "2020-21"
func SeasonLabel(season int) string {
	return fmt.Sprintf("%d-%02d", season-1, season%100)
}

/////////////////////////////////////////////////////////////////////////
////// URLs
/////////////////////////////////////////////////////////////////////////

// SeasonScheduleURL is the league schedule index for a season
func SeasonScheduleURL(base string, season int) string {
	return fmt.Sprintf("%s/leagues/NBA_%d_games.html", base, season)
}

// TeamScheduleURL is the schedule and results page of one team for a season
func TeamScheduleURL(base string, team string, season int) string {
	return fmt.Sprintf("%s/teams/%s/%d_games.html", base, team, season)
}

// RosterURL is the team season page carrying the roster table
func RosterURL(base string, team string, season int) string {
	return fmt.Sprintf("%s/teams/%s/%d.html", base, team, season)
}

// PlayerURL is the player page carrying per game stats for every season.
// Legacy name derived ids do not carry the site's numeric suffix so "01" is assumed
func PlayerURL(base string, playerID string) string {
	if playerID == "" {
		return ""
	}
	id := playerID
	if !hasNumericSuffix(id) {
		id += "01"
	}
	return fmt.Sprintf("%s/players/%s/%s.html", base, firstRunes(id, 1), id)
}

// absoluteURL resolves site relative links found in documents
func absoluteURL(base string, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
}

func hasNumericSuffix(s string) bool {
	if len(s) < 2 {
		return false
	}
	return isDigit(s[len(s)-1]) && isDigit(s[len(s)-2])
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
