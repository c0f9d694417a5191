package config

import (
	"errors"
)

// Sentinel error kinds for this package, for errors.Is at the call site
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
