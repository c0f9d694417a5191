package nba

import (
	"errors"
	"fmt"
	"os"

	"github.com/richard-senior/nbapredict/internal/logger"
	"github.com/richard-senior/nbapredict/pkg/metrics"
)

// PlayerScore is a rostered player's points per game for a season
type PlayerScore struct {
	PlayerID      string  `json:"playerId"`
	PlayerName    string  `json:"playerName"`
	PointsPerGame float64 `json:"pointsPerGame"`
	Source        string  `json:"source"` // stored, fetched or missing
}

// Service is the facade front ends talk to. It owns the store for its lifetime
type Service struct {
	config     *Config
	store      *Store
	repo       *Repository
	fetcher    Fetcher
	classifier *Classifier
}

// NewService validates config, opens the store and prepares its tables.
// A nil fetcher means the rate limited http fetcher described by config
func NewService(config *Config, fetcher Fetcher) (*Service, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	store, err := OpenStore(config.DbPath)
	if err != nil {
		return nil, err
	}
	repo, err := NewRepository(store)
	if err != nil {
		store.Close()
		return nil, err
	}
	if fetcher == nil {
		fetcher = NewFetcher(config)
	}
	return &Service{config: config, store: store, repo: repo, fetcher: fetcher}, nil
}

// Close releases the store
func (s *Service) Close() error {
	return s.store.Close()
}

// Repository exposes the repository for tooling and tests
func (s *Service) Repository() *Repository {
	return s.repo
}

// RunAcquisition fetches everything the store does not have yet
func (s *Service) RunAcquisition() (*Report, error) {
	return NewOrchestrator(s.repo, s.fetcher, s.config).Run()
}

// PredictBaseline returns the historical average score of each team
func (s *Service) PredictBaseline(team1, team2 string) (map[string]float64, error) {
	t1, t2, err := normalisePair(team1, team2)
	if err != nil {
		return nil, err
	}
	games, err := s.repo.AllGames()
	if err != nil {
		return nil, err
	}
	prediction, err := PredictBaseline(games, t1, t2)
	if err != nil {
		return nil, err
	}
	metrics.RecordPrediction("baseline")
	return prediction, nil
}

// PredictClassifier predicts team1 visiting team2. The persisted model is used
// when present, it is trained and saved when absent or when retrain is set
func (s *Service) PredictClassifier(team1, team2 string, retrain bool) (Matchup, error) {
	visitor, home, err := normalisePair(team1, team2)
	if err != nil {
		return Matchup{}, err
	}
	c, err := s.model(retrain)
	if err != nil {
		return Matchup{}, err
	}
	metrics.RecordPrediction("classifier")
	return c.Predict(visitor, home), nil
}

func (s *Service) model(retrain bool) (*Classifier, error) {
	if !retrain {
		if s.classifier != nil {
			return s.classifier, nil
		}
		c, err := LoadModel(s.config.ModelPath)
		if err == nil {
			logger.Info("Loaded model", s.config.ModelPath)
			s.classifier = c
			return c, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		logger.Info("No model at", s.config.ModelPath, "training a new one")
	}

	games, err := s.repo.AllGames()
	if err != nil {
		return nil, err
	}
	c, err := TrainClassifier(games, TrainOptionsFrom(s.config))
	if err != nil {
		return nil, err
	}
	if err := SaveModel(s.config.ModelPath, c); err != nil {
		return nil, err
	}
	s.classifier = c
	return c, nil
}

// ListPlayers returns the stored roster. A zero season means the current season
func (s *Service) ListPlayers(team string, season int) ([]RosterEntry, error) {
	code, err := NormaliseTeam(team)
	if err != nil {
		return nil, err
	}
	if season == 0 {
		season = s.config.CurrentSeason
	}
	return s.repo.PlayersFor(code, season)
}

// PredictPlayerScores returns points per game for every rostered player.
// Stats missing from the store are fetched from the player page and saved,
// players whose page yields nothing score 0
func (s *Service) PredictPlayerScores(team string, season int) ([]PlayerScore, error) {
	players, err := s.ListPlayers(team, season)
	if err != nil {
		return nil, err
	}
	if season == 0 {
		season = s.config.CurrentSeason
	}

	scores := make([]PlayerScore, 0, len(players))
	for _, p := range players {
		score := PlayerScore{PlayerID: p.PlayerID, PlayerName: p.PlayerName, Source: "missing"}
		ppg, ok, err := s.repo.StatFor(p.PlayerID, season)
		if err != nil {
			return nil, err
		}
		if ok {
			score.PointsPerGame, score.Source = ppg, "stored"
		} else if stat, ok := s.fetchStat(p.PlayerID, season); ok {
			if err := s.repo.SaveStat(stat.PlayerID, stat.Season, stat.PointsPerGame); err != nil {
				return nil, err
			}
			score.PointsPerGame, score.Source = stat.PointsPerGame, "fetched"
		}
		scores = append(scores, score)
	}
	metrics.RecordPrediction("player_scores")
	return scores, nil
}

func (s *Service) fetchStat(playerID string, season int) (PlayerStat, bool) {
	doc, err := s.fetcher.Fetch(PlayerURL(s.config.BaseURL, playerID))
	if err != nil {
		return PlayerStat{}, false
	}
	return ParseStatLine(doc, playerID, season)
}

func normalisePair(team1, team2 string) (string, string, error) {
	t1, err := NormaliseTeam(team1)
	if err != nil {
		return "", "", err
	}
	t2, err := NormaliseTeam(team2)
	if err != nil {
		return "", "", err
	}
	if t1 == t2 {
		return "", "", fmt.Errorf("a team cannot play itself: %s", t1)
	}
	return t1, t2, nil
}
