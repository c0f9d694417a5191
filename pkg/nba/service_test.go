package nba

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, fetcher Fetcher) *Service {
	t.Helper()
	config := testConfig(t)
	config.Epochs = 20
	config.LearningRate = 0.01
	s, err := NewService(config, fetcher)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewServiceRejectsInvalidConfig(t *testing.T) {
	config := testConfig(t)
	config.Teams = []string{"XYZ"}
	_, err := NewService(config, newFakeFetcher())
	assert.Error(t, err)
}

func TestServicePredictionsWithoutData(t *testing.T) {
	s := newTestService(t, newFakeFetcher())

	_, err := s.PredictBaseline("BOS", "LAL")
	assert.True(t, errors.Is(err, ErrNoData))

	_, err = s.PredictClassifier("BOS", "LAL", false)
	assert.True(t, errors.Is(err, ErrNoData))

	_, err = s.PredictBaseline("BOS", "bos")
	assert.Error(t, err)
	_, err = s.PredictBaseline("BOS", "Celtics")
	assert.Error(t, err)
}

func TestServiceEndToEnd(t *testing.T) {
	fetcher := newFakeFetcher()
	seedTeamPages(fetcher)
	s := newTestService(t, fetcher)

	t.Log("Step 1: acquisition")
	report, err := s.RunAcquisition()
	require.NoError(t, err)
	assert.Equal(t, 3, report.Count(StateStored))

	t.Log("Step 2: baseline")
	baseline, err := s.PredictBaseline("mil", "BOS")
	require.NoError(t, err)
	assert.InDelta(t, 115.5, baseline["MIL"], 1e-9)
	assert.InDelta(t, 122.0, baseline["BOS"], 1e-9)

	t.Log("Step 3: players")
	players, err := s.ListPlayers("MIL", 0)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "antetgi01", players[0].PlayerID)
}

func TestServiceClassifierPersistsModel(t *testing.T) {
	s := newTestService(t, newFakeFetcher())
	_, err := s.repo.SaveGames(func(yield func(Game) bool) {
		for _, g := range lopsidedGames() {
			if !yield(g) {
				return
			}
		}
	})
	require.NoError(t, err)

	first, err := s.PredictClassifier("BOS", "LAL", false)
	require.NoError(t, err)
	assert.Equal(t, "BOS", first.Visitor)
	assert.Equal(t, "LAL", first.Home)
	_, err = os.Stat(s.config.ModelPath)
	require.NoError(t, err, "model saved after first training")

	t.Log("a fresh service loads the saved weights")
	other, err := NewService(s.config, newFakeFetcher())
	require.NoError(t, err)
	defer other.Close()
	again, err := other.PredictClassifier("BOS", "LAL", false)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	retrained, err := s.PredictClassifier("BOS", "LAL", true)
	require.NoError(t, err)
	assert.Equal(t, first.Winner, retrained.Winner)
}

func TestServicePlayerScores(t *testing.T) {
	fetcher := newFakeFetcher()
	seedTeamPages(fetcher)
	fetcher.pages[RosterURL(testBase, "MIL", 2021)] = rosterPage(
		rosterFixture{id: "antetgi01", name: "Giannis Antetokounmpo", pos: "PF", height: "6-11", weight: "242", born: "December 6, 1994"},
		rosterFixture{id: "middlkh01", name: "Khris Middleton", pos: "SF", height: "6-7", weight: "222", born: "August 12, 1991"},
	)
	fetcher.pages[PlayerURL(testBase, "antetgi01")] = playerPage(map[string]string{"2020-21": "28.1"})
	s := newTestService(t, fetcher)

	_, err := s.RunAcquisition()
	require.NoError(t, err)

	scores, err := s.PredictPlayerScores("MIL", 2021)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, PlayerScore{PlayerID: "antetgi01", PlayerName: "Giannis Antetokounmpo", PointsPerGame: 28.1, Source: "fetched"}, scores[0])
	assert.Equal(t, PlayerScore{PlayerID: "middlkh01", PlayerName: "Khris Middleton", PointsPerGame: 0, Source: "missing"}, scores[1])

	t.Log("second call reads the saved stat")
	fetcher.calls = nil
	scores, err = s.PredictPlayerScores("MIL", 2021)
	require.NoError(t, err)
	assert.Equal(t, "stored", scores[0].Source)
	assert.Equal(t, []string{PlayerURL(testBase, "middlkh01")}, fetcher.calls)
}
