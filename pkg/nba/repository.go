package nba

import (
	"fmt"
	"iter"
)

// Repository is the narrow set of durable operations the orchestrator and
// predictors need, expressed over the Store
type Repository struct {
	store *Store
}

// NewRepository creates the tables if needed and returns a repository over store
func NewRepository(store *Store) (*Repository, error) {
	if store == nil || store.DB() == nil {
		return nil, fmt.Errorf("repository requires an open store")
	}
	if err := store.CreateTables(); err != nil {
		return nil, fmt.Errorf("failed to prepare tables: %w", err)
	}
	return &Repository{store: store}, nil
}

// Has returns true when any games or roster rows exist for the key
func (r *Repository) Has(team string, season int) (bool, error) {
	games, err := r.HasGames(team, season)
	if err != nil || games {
		return games, err
	}
	return r.HasPlayerSeason(team, season)
}

// HasGames returns true when games were stored for the acquisition key
func (r *Repository) HasGames(team string, season int) (bool, error) {
	n, err := r.store.Count(&Game{}, "team = ? AND season = ?", team, season)
	return n > 0, err
}

// HasPlayerSeason returns true when roster rows exist for the key
func (r *Repository) HasPlayerSeason(team string, season int) (bool, error) {
	n, err := r.store.Count(&RosterEntry{}, "team = ? AND season = ?", team, season)
	return n > 0, err
}

// HasSeasonGames returns true when games exist for every team in the season
func (r *Repository) HasSeasonGames(teams []string, season int) (bool, error) {
	for _, t := range teams {
		ok, err := r.HasGames(t, season)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// SaveGames drains games and stores them in one transaction, returning the count stored
func (r *Repository) SaveGames(games iter.Seq[Game]) (int, error) {
	var rows []Persistable
	for g := range games {
		rows = append(rows, &g)
	}
	if err := r.store.InsertAll(rows); err != nil {
		return 0, fmt.Errorf("failed to save games: %w", err)
	}
	return len(rows), nil
}

// SaveRoster drains entries and stores them in one transaction, returning the count stored
func (r *Repository) SaveRoster(entries iter.Seq[RosterEntry]) (int, error) {
	var rows []Persistable
	for e := range entries {
		rows = append(rows, &e)
	}
	if err := r.store.InsertAll(rows); err != nil {
		return 0, fmt.Errorf("failed to save roster: %w", err)
	}
	return len(rows), nil
}

// SaveStat records a player's points per game for a season
func (r *Repository) SaveStat(playerID string, season int, pointsPerGame float64) error {
	if pointsPerGame < 0 {
		return fmt.Errorf("points per game must not be negative, got: %f", pointsPerGame)
	}
	if err := r.store.Insert(&PlayerStat{PlayerID: playerID, Season: season, PointsPerGame: pointsPerGame}); err != nil {
		return fmt.Errorf("failed to save stat for %s: %w", playerID, err)
	}
	return nil
}

// AllGames returns every stored game in insertion order
func (r *Repository) AllGames() ([]Game, error) {
	results, err := r.store.FindAll(&Game{})
	if err != nil {
		return nil, err
	}
	games := make([]Game, 0, len(results))
	for _, res := range results {
		games = append(games, *res.(*Game))
	}
	return games, nil
}

// PlayersFor returns the roster rows stored for a team and season
func (r *Repository) PlayersFor(team string, season int) ([]RosterEntry, error) {
	results, err := r.store.FindWhere(&RosterEntry{}, "team = ? AND season = ?", team, season)
	if err != nil {
		return nil, err
	}
	players := make([]RosterEntry, 0, len(results))
	for _, res := range results {
		players = append(players, *res.(*RosterEntry))
	}
	return players, nil
}

// StatFor returns the first stored points per game for a player season and whether one exists
func (r *Repository) StatFor(playerID string, season int) (float64, bool, error) {
	results, err := r.store.FindWhere(&PlayerStat{}, "player_id = ? AND season = ?", playerID, season)
	if err != nil {
		return 0, false, err
	}
	if len(results) == 0 {
		return 0, false, nil
	}
	return results[0].(*PlayerStat).PointsPerGame, true, nil
}
