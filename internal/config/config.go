// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/deepika/coldgen/internal/fetch"
)

// Config holds settings that can come from a JSON file, the environment, or flags.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	APIKey               string `json:"api_key,omitempty"`               // Gemini API key
	Model                string `json:"model,omitempty"`                 // Model name override
	PortfolioCSV         string `json:"portfolio_csv,omitempty"`         // Path to portfolio CSV
	DatabaseURL          string `json:"database_url,omitempty"`          // PostgreSQL portfolio store
	FetchTimeoutSeconds  int    `json:"fetch_timeout_seconds,omitempty"` // HTTP fetch timeout
	UseBrowser           bool   `json:"use_browser,omitempty"`           // Headless browser for SPA listings
	StructuredExtraction bool   `json:"structured_extraction,omitempty"` // LLM-assisted extraction
	Verbose              bool   `json:"verbose,omitempty"`               // Print detailed debug information
}

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables.
// A .env file loaded at process start feeds these via godotenv.
func FromEnv() *Config {
	return &Config{
		APIKey:       os.Getenv("GEMINI_API_KEY"),
		Model:        os.Getenv("COLDGEN_MODEL"),
		PortfolioCSV: os.Getenv("COLDGEN_PORTFOLIO"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.FetchTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'fetch_timeout_seconds' must be non-negative")
	}
	if c.PortfolioCSV != "" {
		if _, err := os.Stat(c.PortfolioCSV); os.IsNotExist(err) {
			return fmt.Errorf("config error: portfolio file not found: %s", c.PortfolioCSV)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.PortfolioCSV == "" {
		result.PortfolioCSV = defaults.PortfolioCSV
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.FetchTimeoutSeconds == 0 {
		result.FetchTimeoutSeconds = defaults.FetchTimeoutSeconds
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// FetchTimeout returns the configured fetch timeout or the fetcher default.
func (c *Config) FetchTimeout() time.Duration {
	if c.FetchTimeoutSeconds <= 0 {
		return fetch.DefaultTimeout
	}
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}
