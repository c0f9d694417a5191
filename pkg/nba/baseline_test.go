package nba

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictBaseline(t *testing.T) {
	games := []Game{
		{Date: "2021-01-01", VisitorTeam: "BOS", VisitorScore: 100, HomeTeam: "LAL", HomeScore: 110},
		{Date: "2021-01-02", VisitorTeam: "LAL", VisitorScore: 95, HomeTeam: "BOS", HomeScore: 90},
	}

	prediction, err := PredictBaseline(games, "BOS", "LAL")
	require.NoError(t, err)
	assert.InDelta(t, 95.0, prediction["BOS"], 1e-9)
	assert.InDelta(t, 102.5, prediction["LAL"], 1e-9)
}

func TestPredictBaselineUnknownTeamIsZero(t *testing.T) {
	games := []Game{{VisitorTeam: "BOS", VisitorScore: 100, HomeTeam: "LAL", HomeScore: 110}}

	prediction, err := PredictBaseline(games, "BOS", "MIA")
	require.NoError(t, err)
	assert.Equal(t, 0.0, prediction["MIA"])
}

func TestPredictBaselineWithoutGames(t *testing.T) {
	_, err := PredictBaseline(nil, "BOS", "LAL")
	assert.True(t, errors.Is(err, ErrNoData))
}
