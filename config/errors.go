package config

import "errors"

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidInterval is returned for an unparseable poll interval.
	ErrInvalidInterval = errors.New("invalid poll interval")
)
