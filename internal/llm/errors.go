package llm

import (
	"fmt"
	"time"
)

// NetworkError means the request never produced an HTTP response:
// connection failures, DNS errors and timeouts.
type NetworkError struct {
	Provider string

	// Timeout is set when the request hit the configured deadline
	Timeout time.Duration

	Cause error
}

func (e *NetworkError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("%s: request timed out after %s", e.Provider, e.Timeout)
	}
	return fmt.Sprintf("%s: request failed: %v", e.Provider, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// APIError is a non-2xx response from the model endpoint
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: API returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: API returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// ResponseError is a 2xx response whose body lacks the reply text
type ResponseError struct {
	Provider    string
	RawResponse string
	Cause       error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: unexpected response format: %v", e.Provider, e.Cause)
}

func (e *ResponseError) Unwrap() error {
	return e.Cause
}
