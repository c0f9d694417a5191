package nba

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned when a prediction is requested and no games are stored
	ErrNoData = errors.New("no data")
	// ErrInsufficientData is returned when the stored games cannot be split into train and test sets
	ErrInsufficientData = errors.New("insufficient data")
	// ErrModelMismatch is returned when persisted weights were produced by a different network
	ErrModelMismatch = errors.New("persisted model does not match the current network architecture")
)

// FetchFailure describes a fetch that produced no document.
// Callers treat it as "no data for this key" and carry on
type FetchFailure struct {
	URL        string
	Reason     string
	StatusCode int
	Err        error
}

func (f *FetchFailure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("fetch %s failed: %s (status %d)", f.URL, f.Reason, f.StatusCode)
	}
	return fmt.Sprintf("fetch %s failed: %s", f.URL, f.Reason)
}

func (f *FetchFailure) Unwrap() error {
	return f.Err
}

// IsFetchFailure reports whether err is, or wraps, a FetchFailure
func IsFetchFailure(err error) bool {
	var ff *FetchFailure
	return errors.As(err, &ff)
}
