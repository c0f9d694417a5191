package nba

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTeamGamesReadsLocationMarker(t *testing.T) {
	doc := mustDocument(t, teamGamesPage(
		gameFixture{date: "Tue, Dec 22, 2020", opponent: "BOS", pts: "121", oppPts: "122"},
		gameFixture{date: "Wed, Dec 23, 2020", away: true, opponent: "NYK", pts: "110", oppPts: "112"},
	))

	games := slices.Collect(ParseTeamGames(doc, "MIL", 2021))
	require.Len(t, games, 2)

	assert.Equal(t, Game{
		Date: "Tue, Dec 22, 2020", Season: 2021, Team: "MIL",
		VisitorTeam: "BOS", VisitorScore: 122, HomeTeam: "MIL", HomeScore: 121,
	}, games[0])
	assert.Equal(t, Game{
		Date: "Wed, Dec 23, 2020", Season: 2021, Team: "MIL",
		VisitorTeam: "MIL", VisitorScore: 110, HomeTeam: "NYK", HomeScore: 112,
	}, games[1])
}

func TestParseTeamGamesDropsUnplayedAndMalformedRows(t *testing.T) {
	doc := mustDocument(t, teamGamesPage(
		gameFixture{date: "Tue, Dec 22, 2020", opponent: "BOS", pts: "121", oppPts: "122"},
		gameFixture{date: "Fri, Apr 16, 2021", opponent: "ATL", pts: "", oppPts: ""},
		gameFixture{date: "Sat, Apr 17, 2021", opponent: "ATL", pts: "99*", oppPts: "100"},
		gameFixture{date: "Sun, Apr 18, 2021", opponent: "XXX", pts: "99", oppPts: "100"},
	))

	games := slices.Collect(ParseTeamGames(doc, "MIL", 2021))
	require.Len(t, games, 1)
	assert.Equal(t, "BOS", games[0].VisitorTeam)
}

func TestParseTeamGamesWithoutLocationCellTreatsPageTeamAsHome(t *testing.T) {
	doc := mustDocument(t, `<table id="games"><tbody><tr>
		<td data-stat="date_game">2021-01-01</td>
		<td data-stat="opp_name">Boston Celtics</td>
		<td data-stat="pts">100</td><td data-stat="opp_pts">90</td>
	</tr></tbody></table>`)

	games := slices.Collect(ParseTeamGames(doc, "LAL", 2021))
	require.Len(t, games, 1)
	assert.Equal(t, "BOS", games[0].VisitorTeam)
	assert.Equal(t, 90, games[0].VisitorScore)
	assert.Equal(t, "LAL", games[0].HomeTeam)
	assert.Equal(t, 100, games[0].HomeScore)
}

func TestParseTeamGamesIsRestartable(t *testing.T) {
	doc := mustDocument(t, teamGamesPage(
		gameFixture{date: "a", opponent: "BOS", pts: "1", oppPts: "2"},
		gameFixture{date: "b", opponent: "BOS", pts: "3", oppPts: "4"},
	))
	seq := ParseTeamGames(doc, "MIL", 2021)

	assert.Len(t, slices.Collect(seq), 2)
	assert.Len(t, slices.Collect(seq), 2)

	// stopping early is honoured
	n := 0
	for range seq {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestParseTeamGamesMissingTable(t *testing.T) {
	doc := mustDocument(t, `<html><body><p>Page not found</p></body></html>`)
	assert.Empty(t, slices.Collect(ParseTeamGames(doc, "MIL", 2021)))
}

func TestParseGamesUsesNamesAndLinks(t *testing.T) {
	doc := mustDocument(t, schedulePage(
		scheduleFixture{date: "Tue, Dec 22, 2020", visitor: "Golden State Warriors", visitorPts: "99", home: "Brooklyn Nets", homePts: "125"},
		scheduleFixture{date: "Tue, Dec 22, 2020", visitor: `<a href="/teams/LAC/2021.html">LA Clippers</a>`, visitorPts: "116", home: "Los Angeles Lakers", homePts: "109"},
		scheduleFixture{date: "Sun, Jul 18, 2021", visitor: "Phoenix Suns", visitorPts: "", home: "Milwaukee Bucks", homePts: ""},
	))

	games := slices.Collect(ParseGames(doc, 2021))
	require.Len(t, games, 2)
	assert.Equal(t, Game{
		Date: "Tue, Dec 22, 2020", Season: 2021, Team: "BRK",
		VisitorTeam: "GSW", VisitorScore: 99, HomeTeam: "BRK", HomeScore: 125,
	}, games[0])
	assert.Equal(t, "LAC", games[1].VisitorTeam)
	assert.Equal(t, "LAL", games[1].HomeTeam)
	assert.True(t, games[1].VisitorWon())
}

func TestParseScheduleMonths(t *testing.T) {
	doc := mustDocument(t, seasonIndexPage(
		"/leagues/NBA_2021_games-december.html",
		"/leagues/NBA_2021_games-january.html",
		"/leagues/NBA_2021_games-december.html",
	))

	assert.Equal(t, []string{
		testBase + "/leagues/NBA_2021_games-december.html",
		testBase + "/leagues/NBA_2021_games-january.html",
	}, ParseScheduleMonths(doc, testBase))
}

func TestParseRosterFindsCommentedTable(t *testing.T) {
	doc := mustDocument(t, rosterPage(
		rosterFixture{id: "antetgi01", name: "Giannis Antetokounmpo", pos: "PF", height: "6-11", weight: "242", born: "December 6, 1994"},
		rosterFixture{id: "", name: "Jrue Holiday", pos: "PG", height: "6-3", weight: "205", born: "June 12, 1990"},
		rosterFixture{id: "smithja01", name: "Jason Smith", pos: "", height: "7-0", weight: "240", born: "March 2, 1986"},
	))

	entries := slices.Collect(ParseRoster(doc, "MIL", 2021))
	require.Len(t, entries, 2)

	assert.Equal(t, RosterEntry{
		PlayerID: "antetgi01", PlayerName: "Giannis Antetokounmpo", Position: "PF",
		Height: "6-11", Weight: "242", BirthDate: "December 6, 1994", Team: "MIL", Season: 2021,
	}, entries[0])
	// no site identifier, so the legacy key stands in
	assert.Equal(t, "holidjr", entries[1].PlayerID)
}

func TestParseRosterDropsRowWithoutBirthDateCell(t *testing.T) {
	doc := mustDocument(t, rosterPage(
		rosterFixture{id: "portibo01", name: "Bobby Portis", pos: "PF", height: "6-10", weight: "250", born: "February 10, 1995"},
		rosterFixture{id: "lopezbr01", name: "Brook Lopez", pos: "C", height: "7-0", weight: "282", omit: "birth_date"},
	))

	entries := slices.Collect(ParseRoster(doc, "MIL", 2021))
	require.Len(t, entries, 1)
	assert.Equal(t, "portibo01", entries[0].PlayerID)
}

func TestParseRosterKeepsSingleNamePlayers(t *testing.T) {
	doc := mustDocument(t, rosterPage(
		rosterFixture{name: "Nenê", pos: "C", height: "6-11", weight: "250", born: "Sep 13, 1982"},
	))

	entries := slices.Collect(ParseRoster(doc, "HOU", 2017))
	require.Len(t, entries, 1)
	assert.Equal(t, "nenê", entries[0].PlayerID)
	assert.Equal(t, "Nenê", entries[0].PlayerName)
}

func TestParseStatLine(t *testing.T) {
	doc := mustDocument(t, playerPage(map[string]string{
		"2019-20": "29.5",
		"2020-21": "28.1",
		"2021-22": "",
	}))

	stat, ok := ParseStatLine(doc, "antetgi01", 2021)
	require.True(t, ok)
	assert.Equal(t, PlayerStat{PlayerID: "antetgi01", Season: 2021, PointsPerGame: 28.1}, stat)

	_, ok = ParseStatLine(doc, "antetgi01", 2022)
	assert.False(t, ok, "an empty cell is no stat")

	_, ok = ParseStatLine(doc, "antetgi01", 2015)
	assert.False(t, ok)
}

func TestTeamCodeFromHref(t *testing.T) {
	code, ok := teamCodeFromHref("/teams/PHO/2021.html")
	assert.True(t, ok)
	assert.Equal(t, "PHO", code)

	_, ok = teamCodeFromHref("/players/b/bookede01.html")
	assert.False(t, ok)
}
