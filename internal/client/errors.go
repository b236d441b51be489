package client

import (
	"errors"
	"fmt"
)

// TransientError covers network failures, timeouts and retryable upstream
// statuses (429, 5xx). Callers may safely retry the request.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient fetch error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// UpstreamError covers terminal upstream failures: non-retryable HTTP
// statuses and payloads that cannot be decoded. The response body is
// attached for diagnostics.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream error: %v", e.Err)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is safe to retry
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
