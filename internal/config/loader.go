package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/richard-senior/nbapredict/internal/logger"
	"github.com/richard-senior/nbapredict/pkg/nba"
)

const (
	envPrefix = "NBA_"
	envFile   = "NBA_CONFIG"
)

// keys whose env values are comma separated lists
var listKeys = []string{"teams", "seasons"}

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New)
//  2. the YAML file named by NBA_CONFIG, if set
//  3. env vars such as NBA_DB_PATH or NBA_TEAMS=MIL,BOS
func Load() (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// NBA_REQUEST_DELAY -> request_delay, underscores kept to match the tags
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if key == "config" {
			return "", nil
		}
		if slices.Contains(listKeys, key) {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	// slices are decoded over whatever the target already holds, so start them empty
	cfg := *base
	cfg.Teams, cfg.Seasons = nil, nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if len(cfg.Teams) == 0 {
		cfg.Teams = base.Teams
	}
	if len(cfg.Seasons) == 0 {
		cfg.Seasons = base.Seasons
	}
	for i, t := range cfg.Teams {
		cfg.Teams[i] = strings.ToUpper(strings.TrimSpace(t))
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the logging settings and everything nba.ValidateConfig checks
func Validate(c *Config) error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.LogOutput {
	case logger.OutputConsole, logger.OutputFile, logger.OutputBoth:
	default:
		return fmt.Errorf("%w: log_output must be console, file or both, got %q", ErrInvalidConfig, c.LogOutput)
	}
	if err := nba.ValidateConfig(c.NBA()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
