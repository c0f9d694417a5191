package nba

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTeamPages(f *fakeFetcher) {
	f.pages[TeamScheduleURL(testBase, "MIL", 2021)] = teamGamesPage(
		gameFixture{date: "Tue, Dec 22, 2020", opponent: "BOS", pts: "121", oppPts: "122"},
		gameFixture{date: "Wed, Dec 23, 2020", away: true, opponent: "NYK", pts: "110", oppPts: "112"},
	)
	f.pages[RosterURL(testBase, "MIL", 2021)] = rosterPage(
		rosterFixture{id: "antetgi01", name: "Giannis Antetokounmpo", pos: "PF", height: "6-11", weight: "242", born: "December 6, 1994"},
	)
	f.pages[RosterURL(testBase, "BOS", 2021)] = rosterPage(
		rosterFixture{id: "tatumja01", name: "Jayson Tatum", pos: "SF", height: "6-8", weight: "210", born: "March 3, 1998"},
	)
	// BOS schedule deliberately missing
}

func TestOrchestratorRunRecordsEveryKey(t *testing.T) {
	repo := newTestRepository(t)
	fetcher := newFakeFetcher()
	seedTeamPages(fetcher)

	report, err := NewOrchestrator(repo, fetcher, testConfig(t)).Run()
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 4)
	assert.Equal(t, KeyOutcome{Team: "MIL", Season: 2021, Stage: StageGames, State: StateStored, Records: 2}, report.Outcomes[0])
	assert.Equal(t, KeyOutcome{Team: "MIL", Season: 2021, Stage: StageRoster, State: StateStored, Records: 1}, report.Outcomes[1])
	assert.Equal(t, StateFailed, report.Outcomes[2].State)
	assert.Equal(t, "BOS", report.Outcomes[2].Team)
	assert.Contains(t, report.Outcomes[2].Error, "404")
	assert.Equal(t, StateStored, report.Outcomes[3].State, "a failed stage does not stop the key's other stage")
	assert.Equal(t, 4, report.Records())

	games, err := repo.AllGames()
	require.NoError(t, err)
	assert.Len(t, games, 2)
}

func TestOrchestratorSecondRunSkipsStoredKeys(t *testing.T) {
	repo := newTestRepository(t)
	fetcher := newFakeFetcher()
	seedTeamPages(fetcher)
	fetcher.pages[TeamScheduleURL(testBase, "BOS", 2021)] = teamGamesPage(
		gameFixture{date: "Wed, Dec 23, 2020", opponent: "BRK", pts: "95", oppPts: "123"},
	)
	config := testConfig(t)

	_, err := NewOrchestrator(repo, fetcher, config).Run()
	require.NoError(t, err)
	first := len(fetcher.calls)
	assert.Equal(t, 4, first)

	report, err := NewOrchestrator(repo, fetcher, config).Run()
	require.NoError(t, err)
	assert.Equal(t, first, len(fetcher.calls), "no fetches once every key is stored")
	assert.Equal(t, 4, report.Count(StateSkipped))
}

func TestOrchestratorFailedKeysAreRetriedOnTheNextRun(t *testing.T) {
	repo := newTestRepository(t)
	fetcher := newFakeFetcher()
	seedTeamPages(fetcher)
	config := testConfig(t)

	_, err := NewOrchestrator(repo, fetcher, config).Run()
	require.NoError(t, err)

	fetcher.calls = nil
	report, err := NewOrchestrator(repo, fetcher, config).Run()
	require.NoError(t, err)
	assert.Equal(t, []string{TeamScheduleURL(testBase, "BOS", 2021)}, fetcher.calls)
	assert.Equal(t, 1, report.Count(StateFailed))
}

func TestOrchestratorLeagueSchedule(t *testing.T) {
	repo := newTestRepository(t)
	fetcher := newFakeFetcher()
	seedTeamPages(fetcher)
	fetcher.pages[SeasonScheduleURL(testBase, 2021)] = seasonIndexPage(
		"/leagues/NBA_2021_games-december.html",
		"/leagues/NBA_2021_games-january.html",
	)
	fetcher.pages[testBase+"/leagues/NBA_2021_games-december.html"] = schedulePage(
		scheduleFixture{date: "Tue, Dec 22, 2020", visitor: "Boston Celtics", visitorPts: "122", home: "Milwaukee Bucks", homePts: "121"},
		scheduleFixture{date: "Wed, Dec 23, 2020", visitor: "Milwaukee Bucks", visitorPts: "130", home: "Boston Celtics", homePts: "108"},
	)
	// january missing: the season still stores what it could read

	config := testConfig(t)
	config.ScheduleSource = ScheduleSourceLeague

	report, err := NewOrchestrator(repo, fetcher, config).Run()
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, KeyOutcome{Team: leagueKey, Season: 2021, Stage: StageGames, State: StateStored, Records: 2}, report.Outcomes[0])

	has, err := repo.HasSeasonGames(config.Teams, 2021)
	require.NoError(t, err)
	assert.True(t, has)

	fetcher.calls = nil
	report, err = NewOrchestrator(repo, fetcher, config).Run()
	require.NoError(t, err)
	assert.Empty(t, fetcher.calls)
	assert.Equal(t, 3, report.Count(StateSkipped))
}
