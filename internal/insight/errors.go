package insight

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport classifies every failure to obtain a response: network
	// errors, timeouts, non-2xx statuses and an open circuit.
	ErrTransport = errors.New("insight transport failure")

	// ErrNoCandidates means the service answered but produced no text.
	ErrNoCandidates = errors.New("insight response has no candidates")

	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = fmt.Errorf("insight client not configured: %w", ErrTransport)
)

// StatusError reports a non-2xx response from the generative service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("insight service returned status %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrTransport
}
