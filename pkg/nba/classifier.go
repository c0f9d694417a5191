package nba

import (
	"fmt"
	"slices"
	"time"

	"github.com/richard-senior/nbapredict/internal/logger"
	"github.com/richard-senior/nbapredict/pkg/metrics"
)

// Matchup is the classifier's answer for one visitor at one home team
type Matchup struct {
	Visitor               string  `json:"visitor"`
	Home                  string  `json:"home"`
	Winner                string  `json:"winner"`
	Probability           float64 `json:"probability"`
	VisitorWinProbability float64 `json:"visitorWinProbability"`
}

// Classifier pairs a trained network with the feature columns it was trained on
type Classifier struct {
	Columns  []string
	Net      *Network
	Accuracy float64

	index map[string]int
}

// TrainOptions are the knobs of one training run
type TrainOptions struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	TestFraction float64
	Seed         int64
}

// TrainOptionsFrom copies the prediction settings out of config
func TrainOptionsFrom(config *Config) TrainOptions {
	return TrainOptions{
		Epochs:       config.Epochs,
		BatchSize:    config.BatchSize,
		LearningRate: config.LearningRate,
		TestFraction: config.TestFraction,
		Seed:         config.Seed,
	}
}

func visitorColumn(team string) string { return "visitor_" + team }
func homeColumn(team string) string    { return "home_" + team }

// featureColumns one-hot encodes the sides observed in games: the sorted
// visitor columns followed by the sorted home columns
func featureColumns(games []Game) []string {
	visitors := map[string]bool{}
	homes := map[string]bool{}
	for _, g := range games {
		visitors[g.VisitorTeam] = true
		homes[g.HomeTeam] = true
	}
	var vcols, hcols []string
	for t := range visitors {
		vcols = append(vcols, visitorColumn(t))
	}
	for t := range homes {
		hcols = append(hcols, homeColumn(t))
	}
	slices.Sort(vcols)
	slices.Sort(hcols)
	return append(vcols, hcols...)
}

func newClassifier(columns []string, net *Network) *Classifier {
	c := &Classifier{Columns: columns, Net: net}
	c.index = make(map[string]int, len(columns))
	for i, col := range columns {
		c.index[col] = i
	}
	return c
}

// encode builds the feature row for a visitor at home. Teams never seen in
// that role during training have no column and contribute nothing
func (c *Classifier) encode(visitor, home string) []float64 {
	x := make([]float64, len(c.Columns))
	if i, ok := c.index[visitorColumn(visitor)]; ok {
		x[i] = 1
	}
	if i, ok := c.index[homeColumn(home)]; ok {
		x[i] = 1
	}
	return x
}

// Predict returns the win probabilities of visitor at home
func (c *Classifier) Predict(visitor, home string) Matchup {
	p := c.Net.Predict(c.encode(visitor, home))
	m := Matchup{Visitor: visitor, Home: home, VisitorWinProbability: p}
	if p > 0.5 {
		m.Winner, m.Probability = visitor, p
	} else {
		m.Winner, m.Probability = home, 1-p
	}
	return m
}

// TrainClassifier fits a fresh network on games, holding out a stratified
// test split to measure accuracy
func TrainClassifier(games []Game, opts TrainOptions) (*Classifier, error) {
	if len(games) == 0 {
		return nil, ErrNoData
	}
	started := time.Now()

	// a game stored from both teams' pages must not sit in both splits
	games = distinctGames(games)
	columns := featureColumns(games)
	c := newClassifier(columns, nil)
	X := make([][]float64, len(games))
	y := make([]float64, len(games))
	for i := range games {
		X[i] = c.encode(games[i].VisitorTeam, games[i].HomeTeam)
		if games[i].VisitorWon() {
			y[i] = 1
		}
	}

	train, test, err := stratifiedSplit(y, opts.TestFraction, opts.Seed)
	if err != nil {
		return nil, err
	}

	c.Net = NewNetwork(len(columns), opts.Seed)
	c.Net.Fit(pick(X, train), pick(y, train), opts.Epochs, opts.BatchSize, opts.LearningRate, opts.Seed)

	correct := 0
	for _, i := range test {
		predicted := 0.0
		if c.Net.Predict(X[i]) > 0.5 {
			predicted = 1
		}
		if predicted == y[i] {
			correct++
		}
	}
	c.Accuracy = float64(correct) / float64(len(test))

	elapsed := time.Since(started)
	metrics.RecordTraining(elapsed, c.Accuracy)
	logger.Info(fmt.Sprintf("Trained on %d games (%d features), test accuracy %.3f in %s",
		len(train), len(columns), c.Accuracy, elapsed.Round(time.Millisecond)))
	return c, nil
}

// distinctGames keeps the first copy of every (date, visitor, home) game
func distinctGames(games []Game) []Game {
	type key struct{ date, visitor, home string }
	seen := make(map[key]bool, len(games))
	out := make([]Game, 0, len(games))
	for _, g := range games {
		k := key{g.Date, g.VisitorTeam, g.HomeTeam}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, g)
	}
	return out
}

// stratifiedSplit partitions row indices so each label keeps its share in the
// test split. Every label needs two rows, and both splits need at least one
// row per label
func stratifiedSplit(labels []float64, testFraction float64, seed int64) ([]int, []int, error) {
	byClass := map[float64][]int{}
	for i, l := range labels {
		byClass[l] = append(byClass[l], i)
	}
	if len(byClass) < 2 {
		return nil, nil, fmt.Errorf("%w: need both outcomes, found %d", ErrInsufficientData, len(byClass))
	}

	classes := make([]float64, 0, len(byClass))
	for l := range byClass {
		classes = append(classes, l)
	}
	slices.Sort(classes)

	rng := newRand(seed)
	var train, test []int
	for _, l := range classes {
		rows := byClass[l]
		if len(rows) < 2 {
			return nil, nil, fmt.Errorf("%w: outcome %v has %d rows", ErrInsufficientData, l, len(rows))
		}
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		n := int(float64(len(rows))*testFraction + 0.5)
		n = min(max(n, 1), len(rows)-1)
		test = append(test, rows[:n]...)
		train = append(train, rows[n:]...)
	}
	if len(test) < len(classes) || len(train) < len(classes) {
		return nil, nil, fmt.Errorf("%w: %d train and %d test rows", ErrInsufficientData, len(train), len(test))
	}
	slices.Sort(train)
	slices.Sort(test)
	return train, test, nil
}

func pick[T any](rows []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}
