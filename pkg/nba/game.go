package nba

// Compile-time check to ensure Game implements Persistable interface
var _ Persistable = (*Game)(nil)

// Game is one finished game. Rows are insert only and carry no unique constraint,
// Season and Team record which acquisition key produced them
type Game struct {
	Date         string `json:"date" column:"date" dbtype:"TEXT NOT NULL"`
	VisitorTeam  string `json:"visitorTeam" column:"visitor_team" dbtype:"TEXT NOT NULL" index:"true"`
	VisitorScore int    `json:"visitorScore" column:"visitor_score" dbtype:"INTEGER NOT NULL"`
	HomeTeam     string `json:"homeTeam" column:"home_team" dbtype:"TEXT NOT NULL" index:"true"`
	HomeScore    int    `json:"homeScore" column:"home_score" dbtype:"INTEGER NOT NULL"`
	Season       int    `json:"season" column:"season" dbtype:"INTEGER NOT NULL" index:"true"`
	Team         string `json:"team" column:"team" dbtype:"TEXT NOT NULL" index:"true"`
}

// GetTableName returns the table name for games
func (g *Game) GetTableName() string {
	return "games"
}

// VisitorWon returns true if the visiting side outscored the home side
func (g *Game) VisitorWon() bool {
	return g.VisitorScore > g.HomeScore
}

// ScoreFor returns the points scored by team in this game and whether team played in it
func (g *Game) ScoreFor(team string) (int, bool) {
	switch team {
	case g.VisitorTeam:
		return g.VisitorScore, true
	case g.HomeTeam:
		return g.HomeScore, true
	}
	return 0, false
}
