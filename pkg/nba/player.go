package nba

import (
	"strings"
	"unicode/utf8"
)

var _ Persistable = (*RosterEntry)(nil)
var _ Persistable = (*PlayerStat)(nil)

// RosterEntry is one player on a team's roster for a season
type RosterEntry struct {
	PlayerID   string `json:"playerId" column:"player_id" dbtype:"TEXT NOT NULL" index:"true"`
	PlayerName string `json:"playerName" column:"player_name" dbtype:"TEXT NOT NULL"`
	Position   string `json:"position" column:"position" dbtype:"TEXT NOT NULL"`
	Height     string `json:"height" column:"height" dbtype:"TEXT NOT NULL"`
	Weight     string `json:"weight" column:"weight" dbtype:"TEXT NOT NULL"`
	BirthDate  string `json:"birthDate" column:"birth_date" dbtype:"TEXT NOT NULL"`
	Team       string `json:"team" column:"team" dbtype:"TEXT NOT NULL" index:"true"`
	Season     int    `json:"season" column:"season" dbtype:"INTEGER NOT NULL" index:"true"`
}

// GetTableName returns the table name for roster entries
func (r *RosterEntry) GetTableName() string {
	return "players"
}

// PlayerStat is a player's scoring average for one season
type PlayerStat struct {
	PlayerID      string  `json:"playerId" column:"player_id" dbtype:"TEXT NOT NULL" index:"true"`
	Season        int     `json:"season" column:"season" dbtype:"INTEGER NOT NULL" index:"true"`
	PointsPerGame float64 `json:"pointsPerGame" column:"points_per_game" dbtype:"REAL NOT NULL"`
}

// GetTableName returns the table name for player stats
func (p *PlayerStat) GetTableName() string {
	return "player_stats"
}

// LegacyPlayerID derives the old name based join key: the first five letters of the
// surname and the first two of the given name, "LeBron James" becomes "jamesle".
// A single word name such as "Nenê" keeps its first five letters.
// Only used when a roster row carries no site identifier, since short and
// foreign names collide
func LegacyPlayerID(name string) string {
	tokens := strings.Fields(name)
	switch len(tokens) {
	case 0:
		return ""
	case 1:
		return firstRunes(strings.ToLower(tokens[0]), 5)
	}
	return firstRunes(strings.ToLower(tokens[1]), 5) + firstRunes(strings.ToLower(tokens[0]), 2)
}

func firstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
