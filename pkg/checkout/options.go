package checkout

import (
	"log/slog"

	"github.com/google/uuid"
)

// Option configures an Orchestrator during construction.
type Option func(*Orchestrator)

// WithLogger sets the structured logger used for transition and failure
// logging. Nil loggers are ignored; the default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithTokenGenerator overrides the conversion generation-token source.
// Intended for tests that need deterministic supersede behavior.
func WithTokenGenerator(fn func() uuid.UUID) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newToken = fn
		}
	}
}
