package nba

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCreateTableSQL(t *testing.T) {
	sql := generateCreateTableSQL(&Game{}, "games")
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS games (date TEXT NOT NULL, visitor_team TEXT NOT NULL, "+
		"visitor_score INTEGER NOT NULL, home_team TEXT NOT NULL, home_score INTEGER NOT NULL, "+
		"season INTEGER NOT NULL, team TEXT NOT NULL)", sql)

	indexes := generateIndexSQL(&PlayerStat{}, "player_stats")
	assert.Equal(t, []string{
		"CREATE INDEX IF NOT EXISTS idx_player_stats_player_id ON player_stats(player_id)",
		"CREATE INDEX IF NOT EXISTS idx_player_stats_season ON player_stats(season)",
	}, indexes)
}

func TestStoreInsertAndFind(t *testing.T) {
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.CreateTables())

	require.NoError(t, store.Insert(&PlayerStat{PlayerID: "a", Season: 2021, PointsPerGame: 10.5}))
	require.NoError(t, store.InsertAll([]Persistable{
		&PlayerStat{PlayerID: "b", Season: 2021, PointsPerGame: 3},
		&PlayerStat{PlayerID: "b", Season: 2022, PointsPerGame: 4},
	}))

	n, err := store.Count(&PlayerStat{}, "player_id = ?", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := store.FindWhere(&PlayerStat{}, "season = ?", 2021)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, &PlayerStat{PlayerID: "a", Season: 2021, PointsPerGame: 10.5}, rows[0])

	all, err := store.FindAll(&PlayerStat{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStoreCloseIsIdempotent(t *testing.T) {
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestRepositoryHas(t *testing.T) {
	repo := newTestRepository(t)

	has, err := repo.Has("MIL", 2021)
	require.NoError(t, err)
	assert.False(t, has)

	n, err := repo.SaveGames(slices.Values([]Game{
		{Date: "d", VisitorTeam: "BOS", VisitorScore: 1, HomeTeam: "MIL", HomeScore: 2, Season: 2021, Team: "MIL"},
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	has, err = repo.Has("MIL", 2021)
	require.NoError(t, err)
	assert.True(t, has)

	hasPlayers, err := repo.HasPlayerSeason("MIL", 2021)
	require.NoError(t, err)
	assert.False(t, hasPlayers)

	// keyed by the page team, not by every team that appears
	has, err = repo.HasGames("BOS", 2021)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = repo.SaveRoster(slices.Values([]RosterEntry{
		{PlayerID: "x01", PlayerName: "X Y", Position: "C", Height: "7-0", Weight: "250", BirthDate: "today", Team: "BOS", Season: 2022},
	}))
	require.NoError(t, err)
	has, err = repo.Has("BOS", 2022)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRepositorySaveEmptySequence(t *testing.T) {
	repo := newTestRepository(t)
	n, err := repo.SaveGames(slices.Values([]Game(nil)))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRepositoryDuplicatesAreKept(t *testing.T) {
	repo := newTestRepository(t)
	g := Game{Date: "d", VisitorTeam: "BOS", VisitorScore: 1, HomeTeam: "MIL", HomeScore: 2, Season: 2021, Team: "MIL"}
	_, err := repo.SaveGames(slices.Values([]Game{g, g}))
	require.NoError(t, err)

	games, err := repo.AllGames()
	require.NoError(t, err)
	assert.Len(t, games, 2)
}

func TestRepositoryStats(t *testing.T) {
	repo := newTestRepository(t)

	_, ok, err := repo.StatFor("antetgi01", 2021)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SaveStat("antetgi01", 2021, 28.1))
	ppg, ok, err := repo.StatFor("antetgi01", 2021)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 28.1, ppg, 1e-9)

	assert.Error(t, repo.SaveStat("antetgi01", 2021, -1))
}

func TestRepositoryPlayersFor(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.SaveRoster(slices.Values([]RosterEntry{
		{PlayerID: "a01", PlayerName: "A A", Position: "C", Height: "7-0", Weight: "250", BirthDate: "x", Team: "MIL", Season: 2021},
		{PlayerID: "b01", PlayerName: "B B", Position: "G", Height: "6-0", Weight: "180", BirthDate: "y", Team: "MIL", Season: 2022},
		{PlayerID: "c01", PlayerName: "C C", Position: "F", Height: "6-8", Weight: "220", BirthDate: "z", Team: "MIL", Season: 2021},
	}))
	require.NoError(t, err)

	players, err := repo.PlayersFor("MIL", 2021)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "a01", players[0].PlayerID)
	assert.Equal(t, "c01", players[1].PlayerID)
}
