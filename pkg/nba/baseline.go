package nba

// averageScore is the arithmetic mean of every score team recorded, home or away.
// A team without games averages 0
func averageScore(games []Game, team string) float64 {
	total, n := 0, 0
	for i := range games {
		if score, ok := games[i].ScoreFor(team); ok {
			total += score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

// PredictBaseline returns each team's historical average score.
// An empty game set is ErrNoData, a team with no games predicts 0
func PredictBaseline(games []Game, team1, team2 string) (map[string]float64, error) {
	if len(games) == 0 {
		return nil, ErrNoData
	}
	return map[string]float64{
		team1: averageScore(games, team1),
		team2: averageScore(games, team2),
	}, nil
}
