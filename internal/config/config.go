// Package config loads process configuration from defaults, an optional
// YAML file and NBA_ prefixed environment variables.
package config

import (
	"time"

	"github.com/richard-senior/nbapredict/pkg/nba"
)

// Config is the flat, file and env friendly view of the process settings.
// Durations are written as Go duration strings, eg "1500ms"
type Config struct {
	BaseURL   string `koanf:"base_url"`
	DbPath    string `koanf:"db_path"`
	ModelPath string `koanf:"model_path"`

	// empty disables the document cache
	CachePath string `koanf:"cache_path"`

	Teams          []string      `koanf:"teams"`
	Seasons        []int         `koanf:"seasons"`
	ScheduleSource string        `koanf:"schedule_source"`
	RequestDelay   time.Duration `koanf:"request_delay"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	UserAgent      string        `koanf:"user_agent"`

	// CABundle is a PEM file for TLS intercepting proxies
	CABundle string `koanf:"ca_bundle"`

	CurrentSeason int     `koanf:"current_season"`
	Epochs        int     `koanf:"epochs"`
	BatchSize     int     `koanf:"batch_size"`
	LearningRate  float64 `koanf:"learning_rate"`
	TestFraction  float64 `koanf:"test_fraction"`
	Seed          int64   `koanf:"seed"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `koanf:"log_level"`
	// LogOutput is console, file or both
	LogOutput string `koanf:"log_output"`
	LogFile   string `koanf:"log_file"`

	// MetricsAddr serves /metrics when set, eg ":9102"
	MetricsAddr string `koanf:"metrics_addr"`
}

// New returns a Config holding the defaults
func New() *Config {
	d := nba.DefaultConfig()
	return &Config{
		BaseURL:        d.BaseURL,
		DbPath:         d.DbPath,
		ModelPath:      d.ModelPath,
		CachePath:      d.CachePath,
		Teams:          d.Teams,
		Seasons:        d.Seasons,
		ScheduleSource: d.ScheduleSource,
		RequestDelay:   d.RequestDelay,
		RequestTimeout: d.RequestTimeout,
		UserAgent:      d.UserAgent,
		CABundle:       d.CABundle,
		CurrentSeason:  d.CurrentSeason,
		Epochs:         d.Epochs,
		BatchSize:      d.BatchSize,
		LearningRate:   d.LearningRate,
		TestFraction:   d.TestFraction,
		Seed:           d.Seed,
		LogLevel:       "info",
		LogOutput:      "console",
	}
}

// NBA converts to the settings the nba package works with
func (c *Config) NBA() *nba.Config {
	return &nba.Config{
		BaseURL:        c.BaseURL,
		DbPath:         c.DbPath,
		ModelPath:      c.ModelPath,
		CachePath:      c.CachePath,
		Teams:          append([]string(nil), c.Teams...),
		Seasons:        append([]int(nil), c.Seasons...),
		ScheduleSource: c.ScheduleSource,
		RequestDelay:   c.RequestDelay,
		RequestTimeout: c.RequestTimeout,
		UserAgent:      c.UserAgent,
		CABundle:       c.CABundle,
		CurrentSeason:  c.CurrentSeason,
		Epochs:         c.Epochs,
		BatchSize:      c.BatchSize,
		LearningRate:   c.LearningRate,
		TestFraction:   c.TestFraction,
		Seed:           c.Seed,
	}
}
