package nba

import (
	"fmt"
	"time"
)

// Schedule sources understood by the orchestrator
const (
	ScheduleSourceTeam   = "team"
	ScheduleSourceLeague = "league"
)

// Config contains every parameter that influences acquisition and prediction.
// It centralises the magic numbers so they can be overridden from config files
type Config struct {
	// Storage
	BaseURL   string // root of the document source
	DbPath    string // location of the sqlite database
	ModelPath string // location of the persisted classifier weights
	CachePath string // optional directory for cached documents, empty disables the cache

	// === Acquisition ===
	Teams          []string      // teams to traverse
	Seasons        []int         // seasons to traverse, by ending year
	ScheduleSource string        // "team" schedule pages or "league" schedule index
	RequestDelay   time.Duration // minimum interval between two fetches
	RequestTimeout time.Duration // per request timeout
	UserAgent      string        // sent with every request
	CABundle       string        // optional PEM file trusted on top of the system roots

	// === Prediction ===
	CurrentSeason int     // season used for roster and player score lookups
	Epochs        int     // passes over the training split
	BatchSize     int     // mini batch size
	LearningRate  float64 // Adam step size
	TestFraction  float64 // share of rows held out for evaluation
	Seed          int64   // seed for splitting and weight initialisation
}

// DefaultConfig returns the default configuration with all standard values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		DbPath:    "nba.db",
		ModelPath: "nba_model.json",
		CachePath: "",

		Teams:          append([]string(nil), TeamCodes...),
		Seasons:        []int{2020, 2021, 2022, 2023, 2024},
		ScheduleSource: ScheduleSourceTeam,
		RequestDelay:   time.Second,
		RequestTimeout: 10 * time.Second,
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",

		CurrentSeason: 2024,
		Epochs:        10,
		BatchSize:     32,
		LearningRate:  0.001,
		TestFraction:  0.2,
		Seed:          42,
	}
}

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *Config) error {
	if config.BaseURL == "" {
		return fmt.Errorf("BaseURL must not be empty")
	}
	if config.DbPath == "" {
		return fmt.Errorf("DbPath must not be empty")
	}
	if len(config.Teams) == 0 {
		return fmt.Errorf("at least one team is required")
	}
	for _, t := range config.Teams {
		if !IsTeamCode(t) {
			return fmt.Errorf("unknown team code in Teams: %s", t)
		}
	}
	if len(config.Seasons) == 0 {
		return fmt.Errorf("at least one season is required")
	}
	for _, s := range config.Seasons {
		if s < 1947 || s > 2100 {
			return fmt.Errorf("season out of range: %d", s)
		}
	}
	if config.ScheduleSource != ScheduleSourceTeam && config.ScheduleSource != ScheduleSourceLeague {
		return fmt.Errorf("ScheduleSource must be %q or %q, got: %q", ScheduleSourceTeam, ScheduleSourceLeague, config.ScheduleSource)
	}
	if config.RequestDelay < 0 {
		return fmt.Errorf("RequestDelay must not be negative, got: %s", config.RequestDelay)
	}
	if config.RequestTimeout <= 0 {
		return fmt.Errorf("RequestTimeout must be positive, got: %s", config.RequestTimeout)
	}
	if config.Epochs < 1 {
		return fmt.Errorf("Epochs must be at least 1, got: %d", config.Epochs)
	}
	if config.BatchSize < 1 {
		return fmt.Errorf("BatchSize must be at least 1, got: %d", config.BatchSize)
	}
	if config.LearningRate <= 0 || config.LearningRate > 1 {
		return fmt.Errorf("LearningRate should be between 0 and 1, got: %f", config.LearningRate)
	}
	if config.TestFraction <= 0 || config.TestFraction >= 1 {
		return fmt.Errorf("TestFraction should be between 0 and 1, got: %f", config.TestFraction)
	}
	return nil
}
