package poll

import "errors"

var (
	// ErrInvalidInterval is returned for a non-positive poll interval.
	ErrInvalidInterval = errors.New("poll interval must be positive")

	// ErrNoWatchableDirs is returned when none of the directories could be watched.
	ErrNoWatchableDirs = errors.New("no watchable directories")
)
