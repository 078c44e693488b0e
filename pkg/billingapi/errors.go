package billingapi

import (
	"errors"
	"fmt"
)

var (
	ErrMissingBaseURL = errors.New("billingapi: base URL is required")
	ErrInvalidBaseURL = errors.New("billingapi: base URL is not a valid URL")
	ErrRequestFailed  = errors.New("billingapi: request failed")
	ErrDecodeFailed   = errors.New("billingapi: failed to decode response")
)

// StatusError reports a non-2xx response, keeping the server's message when
// the body carried one.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("billingapi: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("billingapi: unexpected status %d: %s", e.StatusCode, e.Message)
}
