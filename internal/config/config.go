// Package config loads policyscan configuration from YAML with environment
// overrides. Missing files fall back to defaults so the CLI works with
// nothing but an API key in the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all policyscan configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Classifier backend configuration
	Classifier ClassifierConfig `yaml:"classifier"`

	// Batch runner configuration
	Batch BatchConfig `yaml:"batch"`

	// Input dataset column names
	Dataset DatasetConfig `yaml:"dataset"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Token usage accounting
	Usage UsageConfig `yaml:"usage"`
}

// ClassifierConfig configures the classifier backend and adapter.
type ClassifierConfig struct {
	Provider string `yaml:"provider"` // openai, gemini
	APIKey   string `yaml:"api_key"`
	// Model overrides the provider's default model when non-empty
	// (gpt-5-nano for openai, gemini-2.5-flash for gemini).
	Model             string `yaml:"model"`
	BaseURL           string `yaml:"base_url"`
	Timeout           string `yaml:"timeout"`
	MaxPolicyChars    int    `yaml:"max_policy_chars"`
	RateLimitCooldown string `yaml:"rate_limit_cooldown"`
	// MaxRetries caps rate-limit retries per record; 0 keeps the historical
	// unbounded behavior.
	MaxRetries int `yaml:"max_retries"`
}

// BatchConfig configures the batch runner.
type BatchConfig struct {
	Delay           string `yaml:"delay"`
	CheckpointEvery int    `yaml:"checkpoint_every"`
	MinPolicyChars  int    `yaml:"min_policy_chars"`
	AuditTrail      string `yaml:"audit_trail"` // JSONL path; empty disables
}

// DatasetConfig names the input columns.
type DatasetConfig struct {
	PolicyColumn string `yaml:"policy_column"`
	IDColumn     string `yaml:"id_column"`
	NameColumn   string `yaml:"name_column"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	Debug      bool   `yaml:"debug"`
	Level      string `yaml:"level"` // debug, info, warn, error
	Directory  string `yaml:"directory"`
	JSONFormat bool   `yaml:"json_format"`
}

// UsageConfig configures token usage persistence.
type UsageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "policyscan",
		Version: "1.0.0",

		Classifier: ClassifierConfig{
			Provider:          "openai",
			BaseURL:           "https://api.openai.com/v1",
			Timeout:           "120s",
			MaxPolicyChars:    100000,
			RateLimitCooldown: "60s",
			MaxRetries:        0,
		},

		Batch: BatchConfig{
			Delay:           "500ms",
			CheckpointEvery: 50,
			MinPolicyChars:  100,
		},

		Dataset: DatasetConfig{
			PolicyColumn: "policy_text",
			IDColumn:     "app_id",
			NameColumn:   "app_name",
		},

		Logging: LoggingConfig{
			Debug:     false,
			Level:     "info",
			Directory: filepath.Join(".policyscan", "logs"),
		},

		Usage: UsageConfig{
			Enabled: true,
			Path:    filepath.Join(".policyscan", "usage.json"),
		},
	}
}

// Load loads configuration from a YAML file. A missing file returns the
// defaults; environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides. Provider keys
// are checked low to high priority so OPENAI_API_KEY wins when both are set.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Classifier.APIKey = key
		c.Classifier.Provider = "gemini"
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Classifier.APIKey = key
		c.Classifier.Provider = "openai"
	}

	if provider := os.Getenv("POLICYSCAN_PROVIDER"); provider != "" {
		c.Classifier.Provider = provider
	}
	if model := os.Getenv("POLICYSCAN_MODEL"); model != "" {
		c.Classifier.Model = model
	}
}

// GetClassifierTimeout returns the backend request timeout.
func (c *Config) GetClassifierTimeout() time.Duration {
	d, err := time.ParseDuration(c.Classifier.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetRateLimitCooldown returns the pause before retrying a rate-limited call.
func (c *Config) GetRateLimitCooldown() time.Duration {
	d, err := time.ParseDuration(c.Classifier.RateLimitCooldown)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetBatchDelay returns the pacing delay between records.
func (c *Config) GetBatchDelay() time.Duration {
	d, err := time.ParseDuration(c.Batch.Delay)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// ValidProviders lists all supported classifier providers.
var ValidProviders = []string{"openai", "gemini"}

// Validate checks the configuration for usability.
func (c *Config) Validate() error {
	if c.Classifier.APIKey == "" {
		return fmt.Errorf("classifier API key not configured (set OPENAI_API_KEY or GEMINI_API_KEY)")
	}

	validProvider := false
	for _, p := range ValidProviders {
		if c.Classifier.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("unknown provider %q (valid: %v)", c.Classifier.Provider, ValidProviders)
	}

	if c.Classifier.MaxPolicyChars <= 0 {
		return fmt.Errorf("max_policy_chars must be positive, got %d", c.Classifier.MaxPolicyChars)
	}
	if c.Batch.CheckpointEvery <= 0 {
		return fmt.Errorf("checkpoint_every must be positive, got %d", c.Batch.CheckpointEvery)
	}
	if c.Batch.MinPolicyChars < 0 {
		return fmt.Errorf("min_policy_chars must not be negative, got %d", c.Batch.MinPolicyChars)
	}
	if c.Classifier.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.Classifier.MaxRetries)
	}
	if c.Dataset.PolicyColumn == "" {
		return fmt.Errorf("policy_column must not be empty")
	}

	return nil
}
