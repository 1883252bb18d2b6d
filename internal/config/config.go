// Package config loads graphscout configuration from a YAML file, falling
// back to defaults when the file is absent.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = ".graphscout.yaml"

// Config holds runtime options for the CLI and the scan engine.
type Config struct {
	// Provider selects the oracle backend: openai, anthropic, or ollama.
	Provider string `yaml:"provider"`

	// Model is the provider-specific model name.
	Model string `yaml:"model"`

	// BaseURL overrides the provider endpoint (Ollama host, or an
	// OpenAI/Anthropic-compatible gateway).
	BaseURL string `yaml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`

	// ChunkSize is the scan window size in lines.
	ChunkSize int `yaml:"chunk_size"`

	// TimeoutSeconds bounds each oracle call; 0 disables the deadline.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// LogLevel sets console verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// Allow lists glob patterns restricting which files are scanned.
	Allow []string `yaml:"allow"`

	// Format is the default call-graph output format (text, json, dot).
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider:       "openai",
		Model:          "",
		APIKeyEnv:      "",
		ChunkSize:      30,
		TimeoutSeconds: 300,
		LogLevel:       "info",
		Format:         "text",
	}
}

// Load reads configuration from path. A missing file returns defaults without
// error; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values; the CLI calls it again after applying flag
// overrides on top of a loaded file.
func (c *Config) Validate() error {
	switch c.Provider {
	case "openai", "anthropic", "ollama":
	default:
		return fmt.Errorf("unsupported provider %q (supported: openai, anthropic, ollama)", c.Provider)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be at least 1, got %d", c.ChunkSize)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds)
	}
	switch c.Format {
	case "", "text", "json", "dot":
	default:
		return fmt.Errorf("unsupported format %q (supported: text, json, dot)", c.Format)
	}
	return nil
}
