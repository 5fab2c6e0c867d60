package domain

import (
	"fmt"
)

// ConfigError reports a required environment variable that is missing or empty.
// It is returned before any client is constructed or any network call is made.
type ConfigError struct {
	Variable string
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("required environment variable %s is not set", e.Variable)
}

// TransportError reports a non-2xx HTTP response from a remote service.
// It carries the status code and the raw response body so callers can
// branch on category without string matching.
type TransportError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface for TransportError.
func (e *TransportError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// NewTransportError creates a TransportError for a failed HTTP response.
func NewTransportError(statusCode int, body []byte) *TransportError {
	return &TransportError{
		StatusCode: statusCode,
		Body:       string(body),
	}
}
