package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvOnce sync.Once

// Load parses environment variables into the provided struct based on its
// env tags. The first call in a process also loads the default .env file,
// if present, so local development picks up overrides without exporting
// variables manually.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	defaultEnvOnce.Do(func() {
		// Absence of a .env file is the normal production case.
		_ = godotenv.Load()
	})
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// LoadEnv loads the given .env files into the process environment before any
// config structs are parsed. Later files override earlier ones. Unlike the
// implicit default load, a missing file here is an error.
func LoadEnv(paths ...string) error {
	for i := len(paths) - 1; i >= 0; i-- {
		// godotenv never overwrites existing vars, so load in reverse to
		// give later paths precedence.
		if err := godotenv.Load(paths[i]); err != nil {
			return errors.Join(ErrLoadingEnvFile, err)
		}
	}
	return nil
}

// MustLoadEnv is LoadEnv that panics on failure.
func MustLoadEnv(paths ...string) {
	if err := LoadEnv(paths...); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}
