package domain

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTrelloBaseURL is used when TRELLO_BASE_URL is not set.
const DefaultTrelloBaseURL = "https://api.trello.com/1"

// ConfluenceConfig holds the credential bundle for one Confluence instance.
type ConfluenceConfig struct {
	BaseURL  string
	Username string
	APIToken string
}

// JiraConfig holds the credential bundle for one Jira instance.
type JiraConfig struct {
	BaseURL  string
	Username string
	APIToken string
}

// TrelloConfig holds the credential bundle for the Trello cloud API.
type TrelloConfig struct {
	APIKey   string
	APIToken string
	BaseURL  string
	MemberID string
}

// requireEnv reads a required environment variable.
// An unset or empty value yields a ConfigError naming the variable.
func requireEnv(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", &ConfigError{Variable: name}
	}
	return value, nil
}

// anyEnvSet reports whether at least one of the named variables is non-empty.
func anyEnvSet(names ...string) bool {
	for _, name := range names {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// LoadConfluenceConfig reads Confluence credentials from the environment.
// All three variables are required; the first missing one is reported.
func LoadConfluenceConfig() (*ConfluenceConfig, error) {
	baseURL, err := requireEnv("CONFLUENCE_BASE_URL")
	if err != nil {
		return nil, err
	}
	username, err := requireEnv("CONFLUENCE_USERNAME")
	if err != nil {
		return nil, err
	}
	token, err := requireEnv("CONFLUENCE_API_TOKEN")
	if err != nil {
		return nil, err
	}

	return &ConfluenceConfig{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		APIToken: token,
	}, nil
}

// ConfluenceConfigured reports whether any Confluence variable is present.
func ConfluenceConfigured() bool {
	return anyEnvSet("CONFLUENCE_BASE_URL", "CONFLUENCE_USERNAME", "CONFLUENCE_API_TOKEN")
}

// LoadJiraConfig reads Jira credentials from the environment.
func LoadJiraConfig() (*JiraConfig, error) {
	baseURL, err := requireEnv("JIRA_BASE_URL")
	if err != nil {
		return nil, err
	}
	username, err := requireEnv("JIRA_USERNAME")
	if err != nil {
		return nil, err
	}
	token, err := requireEnv("JIRA_API_TOKEN")
	if err != nil {
		return nil, err
	}

	return &JiraConfig{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		APIToken: token,
	}, nil
}

// JiraConfigured reports whether any Jira variable is present.
func JiraConfigured() bool {
	return anyEnvSet("JIRA_BASE_URL", "JIRA_USERNAME", "JIRA_API_TOKEN")
}

// LoadTrelloConfig reads Trello credentials from the environment.
// TRELLO_BASE_URL is optional and defaults to the public cloud API root.
func LoadTrelloConfig() (*TrelloConfig, error) {
	apiKey, err := requireEnv("TRELLO_API_KEY")
	if err != nil {
		return nil, err
	}
	apiToken, err := requireEnv("TRELLO_API_TOKEN")
	if err != nil {
		return nil, err
	}
	memberID, err := requireEnv("TRELLO_MEMBER_ID")
	if err != nil {
		return nil, err
	}

	baseURL := os.Getenv("TRELLO_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultTrelloBaseURL
	}

	return &TrelloConfig{
		APIKey:   apiKey,
		APIToken: apiToken,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		MemberID: memberID,
	}, nil
}

// TrelloConfigured reports whether any Trello credential variable is present.
func TrelloConfigured() bool {
	return anyEnvSet("TRELLO_API_KEY", "TRELLO_API_TOKEN", "TRELLO_MEMBER_ID")
}

// TransportConfig defines how the MCP server talks to its client.
// Loaded from an optional YAML file; stdio is the default.
type TransportConfig struct {
	Type string     `yaml:"type"` // "stdio" or "http"
	HTTP HTTPConfig `yaml:"http,omitempty"`
}

// HTTPConfig defines HTTP transport settings.
// Only used when transport type is "http".
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoadTransportConfig reads transport settings from a YAML file.
// An empty path yields the stdio default without touching the filesystem.
func LoadTransportConfig(path string) (*TransportConfig, error) {
	config := &TransportConfig{Type: "stdio"}

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var file struct {
		Transport TransportConfig `yaml:"transport"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid YAML syntax in configuration file: %w", err)
	}

	if file.Transport.Type != "" {
		config = &file.Transport
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate checks the transport configuration for completeness.
func (c *TransportConfig) Validate() error {
	var errors []string

	if c.Type == "" {
		errors = append(errors, "transport type is required")
	} else if c.Type != "stdio" && c.Type != "http" {
		errors = append(errors, fmt.Sprintf("invalid transport type '%s': must be 'stdio' or 'http'", c.Type))
	}

	if c.Type == "http" {
		if c.HTTP.Host == "" {
			errors = append(errors, "HTTP host is required when transport type is 'http'")
		}
		if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid HTTP port %d: must be between 1 and 65535", c.HTTP.Port))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}
