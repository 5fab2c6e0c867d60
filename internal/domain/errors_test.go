package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError_NamesVariable(t *testing.T) {
	err := &ConfigError{Variable: "JIRA_API_TOKEN"}

	if err.Error() != "required environment variable JIRA_API_TOKEN is not set" {
		t.Errorf("Unexpected message: %q", err.Error())
	}
}

func TestConfigError_ErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("startup failed: %w", &ConfigError{Variable: "TRELLO_API_KEY"})

	var configErr *ConfigError
	if !errors.As(wrapped, &configErr) {
		t.Fatal("errors.As should unwrap ConfigError")
	}
	if configErr.Variable != "TRELLO_API_KEY" {
		t.Errorf("Expected variable TRELLO_API_KEY, got %q", configErr.Variable)
	}
}

func TestTransportError_Message(t *testing.T) {
	err := NewTransportError(404, []byte(`{"errorMessages":["not found"]}`))

	if err.StatusCode != 404 {
		t.Errorf("Expected status 404, got %d", err.StatusCode)
	}
	if err.Error() != `HTTP 404: {"errorMessages":["not found"]}` {
		t.Errorf("Unexpected message: %q", err.Error())
	}
}

func TestTransportError_EmptyBody(t *testing.T) {
	err := NewTransportError(503, nil)

	if err.Error() != "HTTP 503" {
		t.Errorf("Unexpected message: %q", err.Error())
	}
}
