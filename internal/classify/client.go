// Package classify sends privacy policy text to an LLM provider and returns
// schema-validated compliance results. Providers are hidden behind the Client
// interface; the Analyzer adds truncation, rate-limit retries, and validation
// on top of a single raw completion call.
package classify

import (
	"context"
	"strings"
	"time"
)

// Client is a minimal completion interface for one classification provider.
// Classify performs exactly one request attempt; retry policy lives in the
// Analyzer so every provider gets identical rate-limit handling.
type Client interface {
	Classify(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	SetModel(model string)
	GetModel() string
}

// Config holds connection settings for a provider client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Some models reject the temperature parameter outright (the gpt-5-nano
// family). Requests to those models must omit the field entirely.
func modelSupportsTemperature(model string) bool {
	return !strings.Contains(strings.ToLower(model), "nano")
}
