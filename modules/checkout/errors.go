package checkout

import "errors"

var (
	// ErrSessionNotFound is returned when the referenced checkout session
	// does not exist or has expired.
	ErrSessionNotFound = errors.New("checkout module: session not found")
)
