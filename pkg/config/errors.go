package config

import "errors"

var (
	// ErrParsingConfig wraps failures from parsing environment variables
	// into the target struct.
	ErrParsingConfig = errors.New("config: failed to parse environment variables")

	// ErrNilPointer is returned when a nil target is passed to Load.
	ErrNilPointer = errors.New("config: nil pointer provided")

	// ErrLoadingEnvFile wraps failures from reading an explicit .env file.
	ErrLoadingEnvFile = errors.New("config: failed to load env file")
)
